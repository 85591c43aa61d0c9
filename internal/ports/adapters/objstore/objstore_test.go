package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "demo-3.mp4", objectKey("/tmp/scratch/segment_3.mp4", "demo-3"))
	assert.Equal(t, "demo-1.webm", objectKey("/tmp/x.webm", "demo-1"))
	assert.Equal(t, "demo-2.mp4", objectKey("/tmp/noext", "demo-2"))
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	a := &Adapter{cfg: Config{Endpoint: "oss.example.com", Bucket: "clips", UseSSL: true}}
	assert.Equal(t, "https://oss.example.com/clips/demo-1.mp4", a.publicURL("demo-1.mp4"))

	a = &Adapter{cfg: Config{Endpoint: "localhost:9000", Bucket: "clips"}}
	assert.Equal(t, "http://localhost:9000/clips/demo-1.mp4", a.publicURL("demo-1.mp4"))

	a = &Adapter{cfg: Config{PublicBaseURL: "https://cdn.example.com/media/"}}
	assert.Equal(t, "https://cdn.example.com/media/demo-1.mp4", a.publicURL("demo-1.mp4"))
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		Bucket:          "clips",
	}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Config){
		"no endpoint": func(c *Config) { c.Endpoint = "" },
		"no bucket":   func(c *Config) { c.Bucket = "" },
		"no key":      func(c *Config) { c.AccessKeyID = "" },
		"no secret":   func(c *Config) { c.SecretAccessKey = "" },
	} {
		c := valid
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "video/mp4", contentTypeFor(".mp4"))
	assert.Equal(t, "video/webm", contentTypeFor(".WEBM"))
	assert.Equal(t, "video/mp4", contentTypeFor(""))
}
