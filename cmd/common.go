package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"watchstate/core/backend"
	"watchstate/core/database"
	"watchstate/core/store"

	"github.com/spf13/cobra"
)

// openStore connects to the state database and makes sure the schema is current.
func openStore(ctx context.Context, cfg database.Config) (*store.Gorm, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.NewGorm(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := st.Verify(ctx); err != nil {
		return nil, fmt.Errorf("state schema check failed: %w", err)
	}
	return st, nil
}

// parseBackends turns name=path flag values into file backends sharing sink.
func parseBackends(args []string, sink io.Writer) ([]backend.Backend, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one --backend name=path is required")
	}
	seen := make(map[string]struct{}, len(args))
	out := make([]backend.Backend, 0, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid backend %q: want name=path", arg)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("backend %s given twice", name)
		}
		seen[name] = struct{}{}
		out = append(out, backend.NewFile(name, path, sink))
	}
	return out, nil
}

// flagBool returns the flag value when it was set on the command line, else fallback.
func flagBool(cmd *cobra.Command, name string, fallback bool) bool {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return fallback
	}
	return v
}
