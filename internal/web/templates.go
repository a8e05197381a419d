package web

// layoutTemplate wraps every page. Pages define the "content" block.
const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} · Dynamic Book</title>
  <style>{{.CSS}}</style>
</head>
<body class="{{.Theme.BodyClass}}">
  <header class="navbar">
    <a class="brand" href="/">Dynamic Book</a>
    <nav>
      <a href="/">Home</a>
      <a href="/upload">Upload</a>
      <a id="nav-stories" href="{{.NavTarget}}">Generated Stories</a>
      <a href="/stories">History</a>
    </nav>
    <form method="post" action="/theme" class="theme-toggle">
      <input type="hidden" name="theme" value="toggle">
      <input type="hidden" name="return" value="{{.Path}}">
      <button type="submit" aria-label="Toggle theme">{{if .Theme.IsDark}}Light mode{{else}}Dark mode{{end}}</button>
    </form>
  </header>
  <div id="notices" class="notices">
    {{range .Notices}}
    <div class="notice notice-{{.Severity}}" data-notice="{{.ID}}" data-expires="{{.ExpiresAt.UnixMilli}}">
      <span>{{.Message}}</span>
      <form method="post" action="/notices/{{.ID}}/dismiss">
        <input type="hidden" name="return" value="{{$.Path}}">
        <button type="submit">{{.Action}}</button>
      </form>
    </div>
    {{end}}
  </div>
  <main class="content">
    {{template "content" .}}
  </main>
  <script>{{.Script}}</script>
</body>
</html>`

const homeTemplate = `{{define "content"}}
<section class="hero">
  <h1>Rewrite the story you are reading</h1>
  <p>Upload a book, pick a chapter and ask what would happen if things had gone differently.</p>
  <a class="button" href="/upload">Upload a book</a>
</section>
<section class="features">
  {{range .Body.Features}}
  <article class="card">
    <h3>{{.Title}}</h3>
    <p>{{.Description}}</p>
  </article>
  {{end}}
</section>
{{end}}`

const uploadTemplate = `{{define "content"}}
<section class="card">
  <h1>Upload a book</h1>
  <form method="post" action="/upload" enctype="multipart/form-data" data-upload>
    <input type="file" name="{{.Body.Field}}" accept="application/pdf" required>
    <button type="submit" class="button" disabled>{{if .Body.Uploading}}Uploading...{{else}}Upload{{end}}</button>
  </form>
</section>
{{with .Body.Book}}
<section class="card">
  <h2>{{.DisplayTitle}}</h2>
  {{if .Author}}<p class="muted">by {{.Author}}</p>{{end}}
  <p>{{len .Chapters}} chapters</p>
  <ol class="chapters">
    {{range .Chapters}}<li>{{.Title}}</li>{{end}}
  </ol>
  <a class="button" href="/upload/proceed">Create a scenario</a>
</section>
{{end}}
{{end}}`

const scenarioTemplate = `{{define "content"}}
{{with .Body}}
{{if .State.Book}}
<section class="card">
  <h1>{{.State.Book.DisplayTitle}}</h1>
  {{if .State.Book.Author}}<p class="muted">by {{.State.Book.Author}}</p>{{end}}
  {{if .State.HasChapter}}
  <div class="chapter-nav">
    <form method="post" action="{{.Base}}/navigate">
      <input type="hidden" name="direction" value="previous">
      <button type="submit"{{if not .State.CanGoPrevious}} disabled{{end}}>Previous</button>
    </form>
    <h2>Chapter {{.State.Chapter.Number}}: {{.State.Chapter.Title}}</h2>
    <span class="muted">{{add .State.Index 1}} of {{len .State.Book.Chapters}}</span>
    <form method="post" action="{{.Base}}/navigate">
      <input type="hidden" name="direction" value="next">
      <button type="submit"{{if not .State.CanGoNext}} disabled{{end}}>Next</button>
    </form>
  </div>
  {{else}}
  <p class="muted">This book has no chapters.</p>
  {{end}}
</section>
<section class="card">
  <form method="post" action="{{.Base}}/generate">
    <label for="scenario">What if...</label>
    <textarea id="scenario" name="scenario" rows="3" placeholder="{{.Placeholder}}">{{.Draft}}</textarea>
    <button type="submit" class="button"{{if or .State.Generating (not .State.HasChapter)}} disabled{{end}}>Generate story</button>
    <a class="button secondary" href="{{.Base}}/export">Export PDF</a>
  </form>
</section>
<section class="side-by-side">
  <article class="card">
    <h3>Original</h3>
    <div class="text">{{.State.OriginalText}}</div>
  </article>
  <article class="card">
    <h3>Generated</h3>
    {{if .Generated}}<div class="markdown">{{.Generated}}</div>{{else}}<p class="muted">Describe a scenario to generate an alternate storyline.</p>{{end}}
  </article>
</section>
{{else}}
<section class="card">
  <h1>No book loaded</h1>
  <p>Upload a book to start writing scenarios.</p>
  <a class="button" href="/upload">Upload a book</a>
</section>
{{end}}
{{end}}
{{end}}`

const storiesTemplate = `{{define "content"}}
<section class="card">
  <h1>Generated stories</h1>
  {{if not .Body.Entries}}<p class="muted">Nothing generated yet.</p>{{end}}
</section>
{{range .Body.Entries}}
<article class="card">
  <h3><a href="{{scenarioPath .BookID}}">{{.BookTitle}}</a> · Chapter {{.ChapterNumber}}{{if .ChapterTitle}}: {{.ChapterTitle}}{{end}}</h3>
  <p class="muted">{{.CreatedAt.Format "2006-01-02 15:04"}} · {{.ScenarioText}}</p>
  <div class="markdown">{{markdown .GeneratedText}}</div>
</article>
{{end}}
{{end}}`

// cssContent is the stylesheet shared by every page.
const cssContent = `
:root { --accent: #3f51b5; --radius: 8px; }
body { margin: 0; font-family: system-ui, sans-serif; line-height: 1.5; }
body.light-theme { --bg: #fafafa; --fg: #212121; --card: #ffffff; --muted: #757575; --border: #e0e0e0; }
body.dark-theme { --bg: #121212; --fg: #eeeeee; --card: #1e1e1e; --muted: #9e9e9e; --border: #333333; }
body { background: var(--bg); color: var(--fg); }
a { color: var(--accent); }
.navbar { display: flex; align-items: center; gap: 1.5rem; padding: .75rem 1.5rem; background: var(--accent); }
.navbar a, .navbar button { color: #fff; text-decoration: none; }
.navbar nav { display: flex; gap: 1rem; flex: 1; }
.brand { font-weight: 700; font-size: 1.2rem; }
.theme-toggle button { background: transparent; border: 1px solid #fff; border-radius: var(--radius); padding: .25rem .75rem; cursor: pointer; }
.content { max-width: 1100px; margin: 0 auto; padding: 1.5rem; }
.card { background: var(--card); border: 1px solid var(--border); border-radius: var(--radius); padding: 1rem 1.5rem; margin-bottom: 1rem; }
.hero { text-align: center; padding: 2rem 0; }
.features { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 1rem; }
.button { display: inline-block; background: var(--accent); color: #fff; border: none; border-radius: var(--radius); padding: .5rem 1rem; cursor: pointer; text-decoration: none; }
.button.secondary { background: transparent; color: var(--accent); border: 1px solid var(--accent); }
button[disabled] { opacity: .5; cursor: not-allowed; }
.muted { color: var(--muted); }
.chapter-nav { display: flex; align-items: center; gap: 1rem; }
.chapter-nav h2 { flex: 1; margin: 0; font-size: 1.2rem; }
textarea { width: 100%; box-sizing: border-box; margin: .5rem 0; background: var(--bg); color: var(--fg); border: 1px solid var(--border); border-radius: var(--radius); padding: .5rem; }
.side-by-side { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
.text { white-space: pre-wrap; }
.notices { position: fixed; bottom: 1rem; left: 50%; transform: translateX(-50%); display: flex; flex-direction: column; gap: .5rem; z-index: 10; }
.notice { display: flex; align-items: center; gap: 1rem; padding: .5rem 1rem; border-radius: var(--radius); color: #fff; background: #323232; }
.notice form { margin: 0; }
.notice button { background: transparent; border: none; color: #ffd740; cursor: pointer; text-transform: uppercase; }
.notice-error { background: #b71c1c; }
.notice-success { background: #1b5e20; }
@media (max-width: 800px) { .side-by-side { grid-template-columns: 1fr; } }
`

// scriptContent hides expired notices and keeps the navbar and notices in
// sync with /ws/events.
const scriptContent = `
(function () {
  function expire(el) {
    var at = parseInt(el.dataset.expires, 10);
    var wait = at - Date.now();
    setTimeout(function () { el.remove(); }, wait > 0 ? wait : 0);
  }
  document.querySelectorAll('.notice[data-expires]').forEach(expire);

  // Upload stays disabled until a file is chosen.
  document.querySelectorAll('form[data-upload]').forEach(function (form) {
    var input = form.querySelector('input[type=file]');
    var button = form.querySelector('button[type=submit]');
    var uploading = button.textContent === 'Uploading...';
    input.addEventListener('change', function () {
      button.disabled = uploading || input.files.length === 0;
    });
    form.addEventListener('submit', function () {
      button.disabled = true;
      button.textContent = 'Uploading...';
    });
  });

  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws/events');
  ws.onmessage = function (msg) {
    var ev = JSON.parse(msg.data);
    if (ev.type === 'active_book') {
      document.getElementById('nav-stories').setAttribute('href', ev.nav_target);
    } else if (ev.type === 'notice' && ev.notice) {
      if (document.querySelector('[data-notice="' + ev.notice.id + '"]')) { return; }
      var el = document.createElement('div');
      el.className = 'notice notice-' + ev.notice.severity;
      el.dataset.notice = ev.notice.id;
      el.dataset.expires = String(Date.now() + ev.notice.duration / 1e6);
      var text = document.createElement('span');
      text.textContent = ev.notice.message;
      var btn = document.createElement('button');
      btn.textContent = ev.notice.action;
      btn.onclick = function () {
        fetch('/api/notices/' + ev.notice.id + '/dismiss', { method: 'POST' });
        el.remove();
      };
      el.appendChild(text);
      el.appendChild(btn);
      document.getElementById('notices').appendChild(el);
      expire(el);
    }
  };
})();
`
