//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/filegraph/internal/graph"
	"github.com/dusk-indust/filegraph/internal/mcptools"
)

func storeFactory(backend string) (mcptools.StoreFactory, error) {
	switch backend {
	case "", "mem":
		return func() (graph.Store, error) { return graph.NewMemStore(), nil }, nil
	case "kuzu":
		return nil, fmt.Errorf("the kuzu backend needs a cgo build")
	default:
		return nil, fmt.Errorf("unknown backend %q (want mem or kuzu)", backend)
	}
}
