package validate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "Widgets", "version": "1.2.3"},
  "paths": {
    "/widget/": {
      "get": {
        "responses": {
          "200": {"description": "OK"}
        }
      }
    }
  }
}`

func TestDocument_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Document(context.Background(), []byte(validDoc)))
}

func TestDocument_MissingInfo(t *testing.T) {
	t.Parallel()
	err := Document(context.Background(), []byte(`{"openapi": "3.0.0", "paths": {}}`))
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Message)
}

func TestDocument_Unparseable(t *testing.T) {
	t.Parallel()
	err := Document(context.Background(), []byte(`{not json`))
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "parse document")
}

func TestError_FormatsPointer(t *testing.T) {
	t.Parallel()
	e := &Error{Message: "bad schema", JSONPointer: "#/paths/~1widget~1/get"}
	assert.Equal(t, "bad schema (at #/paths/~1widget~1/get)", e.Error())
	assert.Equal(t, "bad schema", (&Error{Message: "bad schema"}).Error())
}
