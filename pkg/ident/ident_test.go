package ident_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/ident"
)

func address(build func(w *ident.AddressWriter)) string {
	w := ident.NewAddressWriter()
	build(w)
	return w.Address()
}

func TestAddressWriter_Stable(t *testing.T) {
	a := address(func(w *ident.AddressWriter) {
		w.MarshalString("description")
		w.MarshalStringSlice([]string{"p1", "p2"})
		w.MarshalInt64(42)
	})
	b := address(func(w *ident.AddressWriter) {
		w.MarshalString("description")
		w.MarshalStringSlice([]string{"p1", "p2"})
		w.MarshalInt64(42)
	})
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestAddressWriter_FieldBoundaries(t *testing.T) {
	// length prefixes keep "ab"+"c" distinct from "a"+"bc"
	a := address(func(w *ident.AddressWriter) {
		w.MarshalString("ab")
		w.MarshalString("c")
	})
	b := address(func(w *ident.AddressWriter) {
		w.MarshalString("a")
		w.MarshalString("bc")
	})
	require.NotEqual(t, a, b)
}

func TestAddressWriter_SliceVsConcat(t *testing.T) {
	a := address(func(w *ident.AddressWriter) {
		w.MarshalStringSlice([]string{"x", "y"})
	})
	b := address(func(w *ident.AddressWriter) {
		w.MarshalString("x")
		w.MarshalString("y")
	})
	require.NotEqual(t, a, b)
}

func TestAddressWriter_MapOrderIndependent(t *testing.T) {
	a := address(func(w *ident.AddressWriter) {
		w.MarshalStringMap(map[string]string{"k1": "v1", "k2": "v2"})
	})
	b := address(func(w *ident.AddressWriter) {
		w.MarshalStringMap(map[string]string{"k2": "v2", "k1": "v1"})
	})
	require.Equal(t, a, b)
}
