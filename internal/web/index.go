package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>PortSure Risk Monitor</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem; background: #0f1115; color: #e6e6e6; }
  h1 { font-size: 1.3rem; }
  select, button { padding: .4rem .8rem; margin-right: .5rem; background: #1b1e26; color: #e6e6e6; border: 1px solid #333; border-radius: 4px; }
  table { border-collapse: collapse; margin-top: 1rem; width: 100%; }
  th, td { border-bottom: 1px solid #2a2d36; padding: .4rem .6rem; text-align: left; font-size: .9rem; }
  .breach { color: #f87171; }
  .calc { color: #60a5fa; }
  #score { font-size: 2rem; margin: .5rem 0; }
</style>
</head>
<body>
<h1>PortSure Risk Monitor</h1>
<div>
  <select id="portfolio"></select>
  <button onclick="calculate()">Calculate Risk</button>
</div>
<div id="score"></div>
<h2>Exposure</h2>
<table id="exposure"><thead><tr><th>Class</th><th>Exposure %</th></tr></thead><tbody></tbody></table>
<h2>Evaluation History</h2>
<table id="history"><thead><tr><th>Time</th><th>Kind</th><th>Score</th><th>Breaches</th></tr></thead><tbody></tbody></table>
<script>
const sel = document.getElementById('portfolio');

async function loadPortfolios() {
  const ids = await (await fetch('/api/portfolios')).json();
  sel.innerHTML = ids.map(id => '<option>' + id + '</option>').join('');
  if (ids.length) refresh();
}

async function refresh() {
  const id = sel.value;
  const exposure = await (await fetch('/api/portfolios/' + id + '/exposure')).json();
  document.querySelector('#exposure tbody').innerHTML =
    exposure.map(e => '<tr><td>' + e.name + '</td><td>' + e.value + '</td></tr>').join('');
  const history = await (await fetch('/api/portfolios/' + id + '/history')).json();
  document.querySelector('#history tbody').innerHTML = history.map(ev =>
    '<tr class="' + (ev.kind === 'BREACH' ? 'breach' : 'calc') + '"><td>' +
    new Date(ev.time).toLocaleString() + '</td><td>' + ev.kind + '</td><td>' +
    (ev.score ?? '-') + '</td><td>' + (ev.breaches || []).join('; ') + '</td></tr>').join('');
}

async function calculate() {
  const resp = await fetch('/api/portfolios/' + sel.value + '/calculate', {method: 'POST'});
  if (resp.ok) {
    const ev = await resp.json();
    document.getElementById('score').textContent =
      'Score: ' + ev.score + (ev.tier ? ' (' + ev.tier.label + ')' : '');
  }
  refresh();
}

sel.addEventListener('change', refresh);
new EventSource('/events/stream').addEventListener('evaluation', refresh);
loadPortfolios();
</script>
</body>
</html>
`
