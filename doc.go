/*
Package lousa is a sketch-and-solve board: a fixed-size raster that users draw on, upload photos to or capture
camera frames into, with bounded undo. The board image is relayed with a prompt to a vision-capable
chat-completion API, and a heuristic checker tells whether two algebraic expressions are equivalent.

# Architecture

The core is a set of small packages with no I/O of their own:

  - pkg/surface: the 900x600 pixel buffer with its background grid.
  - pkg/input: display-to-board coordinates and image decoding (upload, camera).
  - pkg/history: bounded PNG snapshot stack with a permanent floor.
  - pkg/board: the single writer tying the three together.
  - pkg/equiv: parser, canonical simplifier and numeric sampler.

Adapters expose it: an HTTP server (pkg/adapters/http), an MCP server (pkg/adapters/mcp) and the lousa CLI.
Settings live in memory, a JSON file or Redis. Relay calls are audited in SQLite and solutions are archived
as Markdown documents.

# Usage

	cfg, _ := config.Load("lousa.yaml")
	app, err := lousa.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	id, b, _ := app.Boards.Create()
	_ = b.Stroke(domain.Stroke{Points: []domain.Point{{X: 10, Y: 10}, {X: 200, Y: 80}}, Width: 4})
	log.Println(id, b.Snapshots())
*/
package lousa
