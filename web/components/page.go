// Package components holds the templ components of the single-page UI.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// SizeOptions renders the option list for the size selector.
func SizeOptions(sizes []int, selected int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, s := range sizes {
			mark := ""
			if s == selected {
				mark = " selected"
			}
			if _, err := fmt.Fprintf(w, "<option value=\"%d\"%s>%d &times; %d</option>", s, mark, s, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// Page is the whole single-page UI with the supported sizes wired into the
// selector.
func Page(sizes []int, defaultSize int) templ.Component {
	return templ.Join(
		templ.Raw(pageTop),
		SizeOptions(sizes, defaultSize),
		templ.Raw(pageBottom),
	)
}

const pageTop = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>linkqr: QR codes with site logos</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
    background: #0a0a0a;
    color: #e0e0e0;
    display: flex;
    justify-content: center;
    padding: 40px 16px;
    min-height: 100vh;
  }
  .card {
    background: #1a1a1a;
    border: 1px solid #333;
    border-radius: 16px;
    padding: 32px;
    max-width: 480px;
    width: 100%;
  }
  h1 { font-size: 20px; font-weight: 600; margin-bottom: 4px; }
  .subtitle { color: #888; font-size: 13px; margin-bottom: 24px; }
  label { display: block; font-size: 13px; color: #aaa; margin: 12px 0 4px; }
  input[type=url], select {
    width: 100%;
    background: #0f0f0f;
    border: 1px solid #333;
    border-radius: 8px;
    color: #e0e0e0;
    padding: 10px 12px;
    font-size: 14px;
  }
  .row { display: flex; gap: 12px; align-items: center; margin-top: 12px; }
  button {
    background: #2563eb;
    border: none;
    border-radius: 8px;
    color: #fff;
    padding: 10px 18px;
    font-size: 14px;
    cursor: pointer;
  }
  button:disabled { background: #1e3a8a; color: #94a3b8; cursor: wait; }
  button.secondary { background: #27272a; color: #d4d4d8; }
  #preview { text-align: center; margin-top: 24px; }
  #preview img { max-width: 256px; border-radius: 8px; background: #fff; }
  #notice { margin-top: 12px; font-size: 13px; border-radius: 8px; padding: 8px 12px; display: none; }
  #notice.success { display: block; background: #052e16; color: #4ade80; }
  #notice.info    { display: block; background: #172554; color: #93c5fd; }
  #notice.warning { display: block; background: #422006; color: #fbbf24; }
  #notice.error   { display: block; background: #450a0a; color: #f87171; }
  #favicon-status { font-size: 12px; color: #888; display: flex; gap: 6px; align-items: center; }
  #favicon-status img { width: 16px; height: 16px; }
  #history { margin-top: 24px; border-top: 1px solid #333; padding-top: 16px; }
  #history h2 { font-size: 13px; color: #888; font-weight: 500; margin-bottom: 8px; }
  #history ul { list-style: none; }
  #history li { padding: 6px 0; font-size: 13px; }
  #history a { color: #93c5fd; text-decoration: none; cursor: pointer; word-break: break-all; }
  #history .when { color: #555; margin-left: 8px; font-size: 11px; }
</style>
</head>
<body>
<div class="card">
  <h1>linkqr</h1>
  <p class="subtitle">Turn any URL into a QR code, with the site's logo in the middle.</p>

  <label for="url">URL</label>
  <input type="url" id="url" placeholder="https://example.com" autofocus>

  <label for="size">Size</label>
  <select id="size">`

const pageBottom = `</select>

  <div class="row">
    <input type="checkbox" id="logo">
    <label for="logo" style="margin:0">Overlay site logo</label>
    <input type="file" id="logo-file" accept="image/*" style="display:none">
    <button class="secondary" id="pick-logo" type="button">Upload logo…</button>
  </div>
  <div id="favicon-status"></div>

  <div class="row">
    <button id="generate" type="button">Generate</button>
    <button class="secondary" id="download" type="button" style="display:none">Download</button>
    <button class="secondary" id="copy" type="button" style="display:none">Copy</button>
  </div>

  <div id="notice"></div>
  <div id="preview"></div>

  <div id="history">
    <h2>Recent URLs <a id="clear-history" style="float:right">clear</a></h2>
    <ul id="history-list"></ul>
  </div>
</div>
<script>
(function() {
  var urlEl = document.getElementById('url');
  var sizeEl = document.getElementById('size');
  var logoEl = document.getElementById('logo');
  var logoFileEl = document.getElementById('logo-file');
  var pickLogoBtn = document.getElementById('pick-logo');
  var generateBtn = document.getElementById('generate');
  var downloadBtn = document.getElementById('download');
  var copyBtn = document.getElementById('copy');
  var noticeEl = document.getElementById('notice');
  var previewEl = document.getElementById('preview');
  var faviconStatus = document.getElementById('favicon-status');
  var historyList = document.getElementById('history-list');

  var uploadedLogo = '';
  var current = null;

  function showNotice(n) {
    if (!n) { noticeEl.className = ''; noticeEl.textContent = ''; return; }
    noticeEl.className = n.level;
    noticeEl.textContent = n.message;
  }

  function renderHistory(entries) {
    while (historyList.firstChild) historyList.removeChild(historyList.firstChild);
    entries.forEach(function(e) {
      var li = document.createElement('li');
      var a = document.createElement('a');
      a.textContent = e.url;
      a.addEventListener('click', function() {
        urlEl.value = e.url;
        generate(true);
      });
      var when = document.createElement('span');
      when.className = 'when';
      when.textContent = new Date(e.timestamp).toLocaleString();
      li.appendChild(a);
      li.appendChild(when);
      historyList.appendChild(li);
    });
  }

  function refreshHistory() {
    fetch('/api/history')
      .then(function(r) { return r.json(); })
      .then(function(data) { renderHistory(data.entries || []); })
      .catch(function() {});
  }

  function detectFavicon() {
    if (!logoEl.checked || uploadedLogo || !urlEl.value.trim()) {
      faviconStatus.textContent = '';
      return;
    }
    faviconStatus.textContent = 'Detecting favicon…';
    fetch('/api/favicon?url=' + encodeURIComponent(urlEl.value))
      .then(function(r) { return r.json(); })
      .then(function(data) {
        while (faviconStatus.firstChild) faviconStatus.removeChild(faviconStatus.firstChild);
        if (data.url) {
          var img = document.createElement('img');
          img.src = data.url;
          faviconStatus.appendChild(img);
          faviconStatus.appendChild(document.createTextNode(
            data.verified ? 'Favicon detected' : 'Favicon not confirmed, will try anyway'));
        }
      })
      .catch(function() { faviconStatus.textContent = ''; });
  }

  function generate(fromHistory) {
    showNotice(null);
    generateBtn.disabled = true;
    var params = new URLSearchParams({
      url: urlEl.value,
      size: sizeEl.value,
      logo: logoEl.checked ? 'true' : 'false',
      fromHistory: fromHistory ? 'true' : 'false'
    });
    if (uploadedLogo) params.set('logoFile', uploadedLogo);

    fetch('/api/generate?' + params.toString())
      .then(function(r) { return r.json(); })
      .then(function(data) {
        if (data.notice) showNotice(data.notice);
        if (data.image) {
          current = data;
          while (previewEl.firstChild) previewEl.removeChild(previewEl.firstChild);
          var img = document.createElement('img');
          img.src = data.image;
          img.alt = 'QR code';
          previewEl.appendChild(img);
          downloadBtn.style.display = '';
          copyBtn.style.display = '';
          refreshHistory();
        }
      })
      .catch(function() {
        showNotice({level: 'error', message: 'QR code generation failed.'});
      })
      .finally(function() { generateBtn.disabled = false; });
  }

  pickLogoBtn.addEventListener('click', function() { logoFileEl.click(); });
  logoFileEl.addEventListener('change', function() {
    var file = logoFileEl.files[0];
    if (!file) return;
    if (file.type.indexOf('image/') !== 0) {
      showNotice({level: 'error', message: 'Only image files can be used as a logo.'});
      return;
    }
    var form = new FormData();
    form.append('logo', file);
    fetch('/api/logo', {method: 'POST', body: form})
      .then(function(r) { return r.json(); })
      .then(function(data) {
        if (data.notice) { showNotice(data.notice); return; }
        uploadedLogo = data.logo;
        logoEl.checked = true;
        pickLogoBtn.textContent = file.name;
      })
      .catch(function() {
        showNotice({level: 'error', message: 'Logo upload failed.'});
      });
  });

  generateBtn.addEventListener('click', function() { generate(false); });
  urlEl.addEventListener('change', detectFavicon);
  logoEl.addEventListener('change', detectFavicon);

  downloadBtn.addEventListener('click', function() {
    if (!current) return;
    var a = document.createElement('a');
    a.href = current.image;
    a.download = current.filename;
    a.click();
  });

  copyBtn.addEventListener('click', function() {
    if (!current) return;
    fetch(current.image)
      .then(function(r) { return r.blob(); })
      .then(function(blob) {
        return navigator.clipboard.write([new ClipboardItem({'image/png': blob})]);
      })
      .then(function() {
        copyBtn.textContent = 'Copied!';
        setTimeout(function() { copyBtn.textContent = 'Copy'; }, 1500);
      })
      .catch(function() {
        showNotice({level: 'error', message: 'Could not copy the image to the clipboard.'});
      });
  });

  document.getElementById('clear-history').addEventListener('click', function() {
    fetch('/api/history', {method: 'DELETE'})
      .then(function() { refreshHistory(); })
      .catch(function() {});
  });

  refreshHistory();
})();
</script>
</body>
</html>`
