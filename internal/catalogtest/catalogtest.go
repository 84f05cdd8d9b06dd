// Package catalogtest provides a small node catalog for tests
package catalogtest

import (
	_ "embed"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avi3tal/noxus-go/pkg/catalog"
)

// NodesJSON is the raw catalog, as returned by GET /v1/nodes
//
//go:embed testdata/nodes.json
var NodesJSON []byte

// Registry returns a registry loaded with NodesJSON
func Registry(t testing.TB) *catalog.Registry {
	t.Helper()
	r := catalog.New()
	require.NoError(t, r.LoadJSON(NodesJSON))
	return r
}
