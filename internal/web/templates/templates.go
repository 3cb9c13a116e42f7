// Package templates holds the HTML components of the web UI.
//
// Components are templ.Component values so handlers render them the same
// way whether they serve a full page or an HTMX fragment.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// HTMXSource is the script tag source of the HTMX library.
const HTMXSource = "https://unpkg.com/htmx.org@1.9.12"

// UploadFormView configures the upload form.
type UploadFormView struct {
	DefaultFileName string
	MaxFileSizeMB   int64
}

// SummaryItem is one line of the claim summary block.
type SummaryItem struct {
	Label string
	Value string
}

// ResultView is everything the result fragment shows for one run.
type ResultView struct {
	FileName string
	Columns  []string
	Preview  [][]string
	Warnings []string
	Summary  []SummaryItem
	Rows     int
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Benefit Template</title>
<script src="` + HTMXSource + `"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 72rem; padding: 0 1rem; color: #1f2937; }
form label { display: block; margin: .75rem 0; }
button { margin-right: .5rem; padding: .4rem .9rem; }
table { border-collapse: collapse; font-size: .875rem; overflow-x: auto; display: block; }
th, td { border: 1px solid #d1d5db; padding: .25rem .5rem; white-space: nowrap; }
th { background: #f3f4f6; text-align: left; }
.warning { background: #fef3c7; border-left: 4px solid #f59e0b; padding: .5rem .75rem; margin: .5rem 0; }
.alert { background: #fee2e2; border-left: 4px solid #dc2626; padding: .5rem .75rem; margin: .5rem 0; }
.code { color: #6b7280; font-size: .8rem; }
</style>
</head>
<body>
<main>
<h1>Benefit Template</h1>
`

const pageFoot = `</main>
</body>
</html>
`

// Page renders the full upload page. result may be nil.
func Page(form UploadFormView, result templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if err := UploadForm(form).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="result">`); err != nil {
			return err
		}
		if result != nil {
			if err := result.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</div>\n"); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageFoot)
		return err
	})
}

// UploadForm renders the CSV upload form. The Transform button swaps the
// result fragment in place; Download Excel File posts the same form to the
// export route and the browser saves the attachment.
func UploadForm(v UploadFormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sw stringWriter
		sw.raw(`<form id="upload-form" method="post" action="/transform" enctype="multipart/form-data">` + "\n")
		sw.raw(`<label>Upload your CSV file <input type="file" name="file" accept=".csv,text/csv" required></label>` + "\n")
		if v.MaxFileSizeMB > 0 {
			sw.raw(`<p class="code">Maximum size: `)
			sw.text(strconv.FormatInt(v.MaxFileSizeMB, 10))
			sw.raw(" MB</p>\n")
		}
		sw.raw(`<label>Enter the Excel file name (without extension): <input type="text" name="filename" value="`)
		sw.text(v.DefaultFileName)
		sw.raw(`"></label>` + "\n")
		sw.raw(`<button type="submit" hx-post="/transform" hx-target="#result" hx-encoding="multipart/form-data">Transform</button>`)
		sw.raw(`<button type="submit" formaction="/export" formmethod="post">Download Excel File</button>` + "\n")
		sw.raw("</form>\n")
		return sw.flush(w)
	})
}

// Result renders the processing notice, date warnings, preview table and
// claim summary of a run.
func Result(v ResultView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sw stringWriter
		sw.raw(`<section class="result">` + "\n")
		sw.raw("<p>Processing data...</p>\n")

		for _, msg := range v.Warnings {
			sw.raw(`<div class="warning" role="status">`)
			sw.text(msg)
			sw.raw("</div>\n")
		}

		sw.raw("<h2>Transformed Data Preview:</h2>\n<table>\n<thead><tr>")
		for _, c := range v.Columns {
			sw.raw("<th>")
			sw.text(c)
			sw.raw("</th>")
		}
		sw.raw("</tr></thead>\n<tbody>\n")
		for _, row := range v.Preview {
			sw.raw("<tr>")
			for _, cell := range row {
				sw.raw("<td>")
				sw.text(cell)
				sw.raw("</td>")
			}
			sw.raw("</tr>\n")
		}
		sw.raw("</tbody>\n</table>\n")

		sw.raw("<h2>Claim Summary:</h2>\n<ul>\n")
		for _, item := range v.Summary {
			sw.raw("<li>")
			sw.text(item.Label + ": " + item.Value)
			sw.raw("</li>\n")
		}
		sw.raw("</ul>\n")

		sw.raw("<p>")
		sw.text(strconv.Itoa(v.Rows) + " rows ready. Download saves them as " + v.FileName + ".")
		sw.raw("</p>\n</section>\n")
		return sw.flush(w)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sw stringWriter
		sw.raw(`<div class="alert" role="alert"><strong>`)
		sw.text(message)
		sw.raw("</strong>")
		if action != "" {
			sw.raw(" ")
			sw.text(action)
		}
		if code != "" {
			sw.raw(` <span class="code">(Code: `)
			sw.text(code)
			sw.raw(")</span>")
		}
		sw.raw("</div>\n")
		return sw.flush(w)
	})
}

// stringWriter buffers a fragment so a component writes all or nothing.
type stringWriter struct {
	buf []byte
}

func (s *stringWriter) raw(html string) {
	s.buf = append(s.buf, html...)
}

func (s *stringWriter) text(v string) {
	s.buf = append(s.buf, templ.EscapeString(v)...)
}

func (s *stringWriter) flush(w io.Writer) error {
	_, err := w.Write(s.buf)
	return err
}
