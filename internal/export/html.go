package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/scholarnet/kgraph/internal/render"
)

// Templates are parsed at init time to fail fast on template errors.
var (
	interactiveTemplate = template.Must(template.New("cytoscape").Parse(cytoscapeTemplate))
	staticTemplate      = template.Must(template.New("svg").Parse(svgTemplate))
)

// CytoscapeURL is the script loaded by interactive pages.
const CytoscapeURL = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

// Options configures HTML generation.
type Options struct {
	Title   string
	Width   float64 // canvas width the positions refer to
	Height  float64 // canvas height the positions refer to
	Offline bool    // draw a static SVG instead of loading Cytoscape.js
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() Options {
	return Options{
		Title:  "Knowledge Graph",
		Width:  800,
		Height: 600,
	}
}

type templateData struct {
	Title     string
	Width     float64
	Height    float64
	ScriptURL string
	GraphJSON template.JS
	Elements  Elements
	Lines     []svgLine
	Label     labelStyle
}

type svgLine struct {
	X1, Y1, X2, Y2 float64
	Width, Opacity float64
}

type labelStyle struct {
	Offset float64
	Size   float64
	Color  string
	Link   string
}

// Write renders el as a self-contained HTML page.
func Write(w io.Writer, el Elements, opts Options) error {
	if !(opts.Width > 0) || !(opts.Height > 0) {
		return fmt.Errorf("invalid canvas size %gx%g", opts.Width, opts.Height)
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	style := render.DefaultStyle()
	data := templateData{
		Title:    opts.Title,
		Width:    opts.Width,
		Height:   opts.Height,
		Elements: el,
		Label: labelStyle{
			Offset: style.LabelOffset,
			Size:   render.LabelSize,
			Color:  render.Hex(render.ColorLabel),
			Link:   render.Hex(render.ColorLink),
		},
	}

	if opts.Offline {
		pos := make(map[string]Node, len(el.Nodes))
		for _, n := range el.Nodes {
			pos[n.Data.ID] = n
		}
		for _, e := range el.Edges {
			a, b := pos[e.Data.Source], pos[e.Data.Target]
			data.Lines = append(data.Lines, svgLine{
				X1: a.Position.X, Y1: a.Position.Y,
				X2: b.Position.X, Y2: b.Position.Y,
				Width:   e.Data.Strength * style.LinkWidth,
				Opacity: e.Data.Opacity,
			})
		}
		return staticTemplate.Execute(w, data)
	}

	graphJSON, err := el.JSON()
	if err != nil {
		return err
	}
	data.ScriptURL = CytoscapeURL
	data.GraphJSON = template.JS(graphJSON)
	return interactiveTemplate.Execute(w, data)
}

// Generate renders el and returns the page as a string.
func Generate(el Elements, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, el, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const pageStyle = `
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
      padding-top: 40vh;
    }`

const svgTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>` + pageStyle + `
    svg {
      display: block;
      margin: 0 auto;
      background: white;
    }
  </style>
</head>
<body>
{{- if not .Elements.Nodes}}
  <div class="empty-state"><h2>No graph data</h2></div>
{{- else}}
  <svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
    <g class="links" stroke="{{.Label.Link}}">
{{- range .Lines}}
      <line x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}" stroke-width="{{.Width}}" stroke-opacity="{{.Opacity}}"/>
{{- end}}
    </g>
    <g class="nodes" font-size="{{.Label.Size}}" fill="{{.Label.Color}}" text-anchor="middle">
{{- $offset := .Label.Offset}}
{{- range .Elements.Nodes}}
      <g class="node" data-id="{{.Data.ID}}" data-kind="{{.Data.Kind}}">
        <title>{{.Data.Label}} ({{.Data.Kind}}, {{.Data.Degree}} links)</title>
        <circle cx="{{.Position.X}}" cy="{{.Position.Y}}" r="{{.Data.Weight}}" fill="{{.Data.Color}}"/>
        <text x="{{.Position.X}}" y="{{.Position.Y}}" dy="{{.Data.Weight}}" transform="translate(0 {{$offset}})">{{.Data.Label}}</text>
      </g>
{{- end}}
    </g>
  </svg>
{{- end}}
</body>
</html>`

const cytoscapeTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>` + pageStyle + `
    #cy {
      width: 100%;
      height: 100vh;
      background: white;
    }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 300px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .type {
      font-size: 10px;
      text-transform: uppercase;
      color: #888;
      margin-bottom: 4px;
    }
    #tooltip .label {
      font-weight: bold;
      margin-bottom: 4px;
    }
  </style>
</head>
<body>
{{- if not .Elements.Nodes}}
  <div class="empty-state"><h2>No graph data</h2></div>
{{- else}}
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': 'data(color)',
              'label': 'data(label)',
              'color': '{{.Label.Color}}',
              'font-size': '{{.Label.Size}}px',
              'text-valign': 'bottom',
              'text-margin-y': '{{.Label.Offset}}px',
              'width': 'mapData(weight, 0, 50, 0, 100)',
              'height': 'mapData(weight, 0, 50, 0, 100)'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '{{.Label.Link}}',
              'opacity': 'data(opacity)',
              'width': 'mapData(strength, 0, 1, 0, 2)',
              'curve-style': 'straight'
            }
          },
          {
            selector: 'node.highlighted',
            style: {
              'border-width': 3,
              'border-color': '#1F2937'
            }
          },
          {
            selector: 'node.dimmed',
            style: {
              'opacity': 0.3
            }
          },
          {
            selector: 'edge.dimmed',
            style: {
              'opacity': 0.1
            }
          }
        ],
        layout: { name: 'preset', fit: true, padding: 20 }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      cy.on('mouseover', 'node', function(evt) {
        const data = evt.target.data();
        tooltip.innerHTML = '<div class="type">' + escapeHtml(data.kind) + '</div>' +
          '<div class="label">' + escapeHtml(data.label) + '</div>' +
          '<div>Influence: ' + data.weight + '</div>' +
          '<div>Connections: ' + data.degree + '</div>';
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      });

      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const neighborhood = node.neighborhood().add(node);
        node.addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
{{- end}}
</body>
</html>`
