package catalog_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avi3tal/noxus-go/internal/catalogtest"
	"github.com/avi3tal/noxus-go/pkg/catalog"
	"github.com/avi3tal/noxus-go/pkg/types"
)

func TestRegistryLoad(t *testing.T) {
	t.Parallel()

	r := catalogtest.Registry(t)
	require.Equal(t, 7, r.Len())
	require.Contains(t, r.Types(), "TextGenerationNode")

	d, err := r.Lookup("TextGenerationNode")
	require.NoError(t, err)
	require.Equal(t, "Text Generation", d.Title)
	require.Len(t, d.Inputs, 1)
	require.Equal(t, types.KindVariable, d.Inputs[0].Kind)
	require.Equal(t, types.FieldFloat, d.Config["temperature"].Type)
	require.False(t, d.Config["template"].Optional)
	require.Equal(t, []string{"max_tokens", "model", "temperature", "template"}, d.VisibleConfigKeys())
}

func TestRegistryLookupUnknown(t *testing.T) {
	t.Parallel()

	r := catalogtest.Registry(t)
	_, err := r.Lookup("FOOBAR")
	require.Error(t, err)
	require.True(t, errors.Is(err, catalog.ErrNodeTypeNotFound))
	require.Contains(t, err.Error(), "FOOBAR")
}

func TestRegistryFailedLoadKeepsPrevious(t *testing.T) {
	t.Parallel()

	r := catalogtest.Registry(t)
	bad := []json.RawMessage{
		json.RawMessage(`{"type": "A", "title": "A", "inputs": [], "outputs": [], "config": {}}`),
		json.RawMessage(`{"type": "B", "config": {"x": {"type": "weird"}}}`),
	}
	require.Error(t, r.Load(bad))
	require.Equal(t, 7, r.Len())

	_, err := r.Lookup("A")
	require.Error(t, err)
}

func TestRegistryLaterDuplicateWins(t *testing.T) {
	t.Parallel()

	r := catalog.New()
	require.NoError(t, r.LoadJSON([]byte(`[
		{"type": "X", "title": "first"},
		{"type": "X", "title": "second"}
	]`)))
	d, err := r.Lookup("X")
	require.NoError(t, err)
	require.Equal(t, "second", d.Title)
	require.Equal(t, 1, r.Len())
}

func TestRegistryRejectsDescriptorWithoutType(t *testing.T) {
	t.Parallel()

	r := catalog.New()
	require.Error(t, r.LoadJSON([]byte(`[{"title": "nameless"}]`)))
	require.Error(t, r.LoadJSON([]byte(`{"type": "X"}`)))
}

func TestRegistryConcurrentLoadAndLookup(t *testing.T) {
	t.Parallel()

	r := catalogtest.Registry(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.LoadJSON(catalogtest.NodesJSON))
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := r.Lookup("OutputNode")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestConnectorSpecRoundTrip(t *testing.T) {
	t.Parallel()

	var c catalog.ConnectorSpec
	require.NoError(t, json.Unmarshal([]byte(`{"name": "output", "type": "connector", "definition": {"data_type": "str"}}`), &c))
	require.Equal(t, "output", c.Name)
	require.Equal(t, types.KindConnector, c.Kind)
	require.Nil(t, c.Keys)
	require.Contains(t, c.Extra, "definition")

	out, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "output", "type": "connector", "definition": {"data_type": "str"}}`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"type": "connector"}`), &c))
	require.Error(t, json.Unmarshal([]byte(`{"name": "a", "type": "pipe"}`), &c))
}

func TestConnectorSpecCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := catalog.ConnectorSpec{Name: "variables", Kind: types.KindVariable, Keys: []string{"a"}}
	cp := orig.Clone()
	cp.Keys = append(cp.Keys, "b")
	cp.Keys[0] = "z"

	require.Equal(t, []string{"a"}, orig.Keys)
	require.True(t, cp.HasKey("b"))
	require.False(t, orig.HasKey("b"))
}

func TestConfigFieldSpecCheck(t *testing.T) {
	t.Parallel()

	required := catalog.ConfigFieldSpec{Type: types.FieldString}
	optional := catalog.ConfigFieldSpec{Type: types.FieldInt, Optional: true}

	err := required.Check("template", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, catalog.ErrMissingValue))
	require.Equal(t, "missing required config value for template", err.Error())

	require.NoError(t, optional.Check("max_tokens", nil))
	require.NoError(t, optional.Check("max_tokens", 100))

	err = optional.Check("max_tokens", "lots")
	require.Error(t, err)
	var fe *catalog.FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "max_tokens", fe.Key)
	require.Contains(t, err.Error(), "invalid config value for max_tokens")
	var ve *types.ValueError
	require.True(t, errors.As(err, &ve))
}

func TestDeriveReturnsPrivateCopies(t *testing.T) {
	t.Parallel()

	r := catalogtest.Registry(t)
	first, err := catalog.Derive(r, "TextGenerationNode")
	require.NoError(t, err)
	first.Inputs[0].Keys = append(first.Inputs[0].Keys, "topic")
	delete(first.Schema, "template")

	second, err := catalog.Derive(r, "TextGenerationNode")
	require.NoError(t, err)
	require.Empty(t, second.Inputs[0].Keys)
	require.Contains(t, second.Schema, "template")
	require.Equal(t, "Text Generation", second.Title)
	require.Equal(t, []string{"max_tokens", "model", "temperature", "template"}, second.VisibleKeys())

	_, err = catalog.Derive(r, "Nope")
	require.True(t, errors.Is(err, catalog.ErrNodeTypeNotFound), fmt.Sprint(err))
}
