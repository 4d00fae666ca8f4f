package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "app", false)

	l.Debugf("hidden")
	l.Infof("loaded %d tiles", 9)
	l.Errorf("boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[app] INFO: loaded 9 tiles")
	assert.Contains(t, errOut.String(), "[app] ERROR: boom")
	assert.NotContains(t, out.String(), "boom")
}

func TestWriterLogger_ScopedSharesDebug(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, nil, "app", false)
	child := Scope(l, "splat")

	l.SetDebug(true)
	assert.True(t, child.DebugEnabled())
	child.Debugf("packed")
	child.Warnf("slow")

	assert.Contains(t, out.String(), "[app/splat] DEBUG: packed")
	assert.Contains(t, out.String(), "[app/splat] WARN: slow")
}

func TestScope_NilAndForeign(t *testing.T) {
	assert.NotNil(t, Scope(nil, "x"))
	assert.False(t, Scope(nil, "x").DebugEnabled())

	nop := NewNopLogger()
	assert.Equal(t, nop, Scope(nop, "x"))
}
