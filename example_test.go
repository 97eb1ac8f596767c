package lousa_test

import (
	"fmt"
	"log"

	"github.com/aretw0/lousa"
	"github.com/aretw0/lousa/internal/config"
	"github.com/aretw0/lousa/internal/logging"
	"github.com/aretw0/lousa/pkg/adapters/memory"
	"github.com/aretw0/lousa/pkg/domain"
)

// ExampleNew draws on a board and undoes the stroke.
func ExampleNew() {
	cfg := config.Default()
	cfg.AuditDB = ""
	cfg.ArchiveDir = ""

	app, err := lousa.New(cfg,
		lousa.WithLogger(logging.NewNop()),
		lousa.WithSettingsStore(memory.NewStore()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	_, b, err := app.Boards.Create()
	if err != nil {
		log.Fatal(err)
	}

	stroke := domain.Stroke{
		Points: []domain.Point{{X: 100, Y: 100}, {X: 400, Y: 300}},
		Width:  domain.DefaultPenWidth,
	}
	if err := b.Stroke(stroke); err != nil {
		log.Fatal(err)
	}
	fmt.Println("snapshots:", b.Snapshots())

	undone, _ := b.Undo()
	fmt.Println("undone:", undone, "snapshots:", b.Snapshots())

	undone, _ = b.Undo()
	fmt.Println("undone:", undone, "snapshots:", b.Snapshots())
	// Output:
	// snapshots: 2
	// undone: true snapshots: 1
	// undone: false snapshots: 1
}
