package notify_test

import (
	"bytes"
	"testing"

	"github.com/nikolayk812/cartstore-demo/internal/notify"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	ctx := t.Context()
	b := notify.NewBuffer()

	b.NotifyError(ctx, "first")
	b.NotifyError(ctx, "second")

	assert.Equal(t, []string{"first", "second"}, b.Messages())
	assert.Equal(t, []string{"first", "second"}, b.Drain())
	assert.Empty(t, b.Messages())
}

func TestLog(t *testing.T) {
	var out bytes.Buffer

	log := logrus.New()
	log.SetOutput(&out)
	log.SetFormatter(&logrus.JSONFormatter{})

	notify.NewLog(log).NotifyError(t.Context(), "Failed to add product")

	assert.Contains(t, out.String(), `"msg":"Failed to add product"`)
	assert.Contains(t, out.String(), `"level":"error"`)
}
