package dashboard

import "net/http"

func (d *Dashboard) serveFrontend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(frontendHTML))
}

const frontendHTML = `<!DOCTYPE html>
<html lang="en"><head>
<meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Solana ML Scanner</title>
<style>
:root{--bg:#08090d;--sf:#0f1118;--bd:#252a3a;--tx:#c8cdd8;--tx2:#8891a5;--ac:#3b82f6;--gn:#10b981;--rd:#ef4444;--or:#f59e0b}
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:ui-monospace,monospace;background:var(--bg);color:var(--tx);min-height:100vh;padding:24px}
h1{font-size:18px;margin-bottom:16px}
h2{font-size:13px;color:var(--tx2);text-transform:uppercase;margin:20px 0 8px}
.cards{display:flex;gap:12px;flex-wrap:wrap}
.card{background:var(--sf);border:1px solid var(--bd);border-radius:8px;padding:12px 16px;min-width:140px}
.card .v{font-size:22px;font-weight:600}
.card .l{font-size:11px;color:var(--tx2)}
table{width:100%;border-collapse:collapse;background:var(--sf);border:1px solid var(--bd);border-radius:8px}
th,td{text-align:left;padding:6px 10px;font-size:12px;border-bottom:1px solid var(--bd)}
th{color:var(--tx2)}
.LOW{color:var(--gn)}.MEDIUM{color:var(--or)}.HIGH{color:var(--rd)}
</style></head><body>
<h1>🎯 Solana ML Scanner</h1>
<div class="cards" id="cards"></div>
<h2>Recent alerts</h2>
<table id="alerts"><thead><tr><th>Time</th><th>Token</th><th>Score</th><th>Pattern</th><th>Risk</th></tr></thead><tbody></tbody></table>
<h2>Recent analyses</h2>
<table id="analyses"><thead><tr><th>Token</th><th>Score</th><th>Pattern</th><th>Risk</th><th>Liquidity</th><th>Source</th></tr></thead><tbody></tbody></table>
<script>
const esc=s=>String(s??'').replace(/[&<>]/g,c=>({'&':'&amp;','<':'&lt;','>':'&gt;'}[c]));
async function refresh(){
  const s=await (await fetch('/api/stats')).json();
  document.getElementById('cards').innerHTML=[
    ['Analyzed today',s.analyses_today],['Alerts today',s.alerts_today],
    ['Alerts remaining',s.alerts_remaining_today],['Avg score',(+s.avg_score_today).toFixed(1)],
    ['Best score',(+s.best_score_today).toFixed(1)],['Total analyses',s.total_analyses]
  ].map(([l,v])=>'<div class="card"><div class="v">'+esc(v)+'</div><div class="l">'+esc(l)+'</div></div>').join('');
  const alerts=await (await fetch('/api/alerts?limit=20')).json();
  document.querySelector('#alerts tbody').innerHTML=(alerts||[]).map(a=>
    '<tr><td>'+esc(new Date(a.sent_at).toLocaleTimeString())+'</td><td>'+esc(a.symbol)+' '+esc(a.address.slice(0,8))+'…</td><td>'+
    (+a.score_combined).toFixed(1)+'</td><td>'+esc(a.category)+'</td><td class="'+esc(a.risk_level)+'">'+esc(a.risk_level)+'</td></tr>').join('');
  const an=await (await fetch('/api/analyses/recent?limit=25')).json();
  document.querySelector('#analyses tbody').innerHTML=(an||[]).map(r=>
    '<tr><td>'+esc(r.token.symbol)+' '+esc(r.token.address.slice(0,8))+'…</td><td>'+(+r.scoring.score_combined).toFixed(1)+
    '</td><td>'+esc(r.scoring.pattern)+'</td><td class="'+esc(r.scoring.risk_level)+'">'+esc(r.scoring.risk_level)+
    '</td><td>$'+Math.round(r.token.liquidity_usd).toLocaleString()+'</td><td>'+esc(r.token.source)+'</td></tr>').join('');
}
refresh();setInterval(refresh,10000);
</script></body></html>`
