//go:build cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/mcptools"
)

// storeFactory returns the store constructor for a --backend value.
func storeFactory(backend string) (mcptools.StoreFactory, error) {
	switch backend {
	case "", "mem":
		return func() (graph.Store, error) { return graph.NewMemStore(), nil }, nil
	case "kuzu":
		return func() (graph.Store, error) { return graph.NewKuzuStore() }, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want mem or kuzu)", backend)
	}
}
