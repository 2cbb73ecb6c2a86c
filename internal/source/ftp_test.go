package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFTP_Defaults(t *testing.T) {
	src := NewFTP(FTPOptions{Host: "drop.example.com", Dir: "/contracts"})

	assert.Equal(t, "drop.example.com:21", src.opts.Host)
	assert.Equal(t, "anonymous", src.opts.User)
	assert.Equal(t, "anonymous@", src.opts.Pass)
	assert.Equal(t, 30*time.Second, src.opts.Timeout)
}

func TestNewFTP_ExplicitPortAndUser(t *testing.T) {
	src := NewFTP(FTPOptions{
		Host:    "drop.example.com:2121",
		User:    "intake",
		Pass:    "secret",
		Timeout: 5 * time.Second,
	})

	assert.Equal(t, "drop.example.com:2121", src.opts.Host)
	assert.Equal(t, "intake", src.opts.User)
	assert.Equal(t, 5*time.Second, src.opts.Timeout)
}
