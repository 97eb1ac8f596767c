package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/lousa/pkg/ports"
	"github.com/aretw0/lousa/pkg/settings"
)

// ShowSettings prints the effective settings as indented JSON.
func ShowSettings(ctx context.Context, w io.Writer, store ports.SettingsStore) error {
	s, err := store.Load(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// SetSettings applies key=value assignments over the stored settings and saves them.
func SetSettings(ctx context.Context, store ports.SettingsStore, assignments []string) (settings.Settings, error) {
	update, err := parseAssignments(assignments)
	if err != nil {
		return settings.Settings{}, err
	}
	current, err := store.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	next, err := settings.FromMap(current, update)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := store.Save(ctx, next); err != nil {
		return settings.Settings{}, err
	}
	return next, nil
}

func parseAssignments(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one key=value")
	}
	out := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", arg)
		}
		out[k] = v
	}
	return out, nil
}
