package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEcho(t *testing.T) {
	var out bytes.Buffer
	err := echo(context.Background(), strings.NewReader("120:0:0|bad|0:170:0|"), &out)

	assert.EqualError(t, err, "serial port closed")
	assert.Equal(t, "rgb(120, 0, 0) #780000\nrgb(0, 170, 0) #00aa00\n", out.String())
}

func TestEchoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := echo(ctx, strings.NewReader("1:2:3|"), &out)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
