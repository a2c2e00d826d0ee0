package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpError_Classification(t *testing.T) {
	err := FormatError("shares.from_list", "shares.use_optionals", "expected list, got %T", 42)

	assert.True(t, errors.Is(err, ErrConfigFormat))
	assert.False(t, errors.Is(err, ErrGroupParse))
	assert.True(t, IsKind(err, KindConfigFormat))
	assert.Contains(t, err.Error(), "path=shares.use_optionals")
	assert.Contains(t, err.Error(), "expected list, got int")
}

func TestOpError_WrappedStillClassified(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("save: %w", StorageError("storage.write", "/tmp/config.yml", cause))

	assert.True(t, errors.Is(err, ErrStorageIO))
	assert.True(t, errors.Is(err, cause), "исходная причина должна оставаться доступной")
	assert.True(t, IsKind(err, KindStorageIO))
	assert.False(t, IsKind(errors.New("plain"), KindStorageIO))
}

func TestOpError_Nil(t *testing.T) {
	var e *OpError
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
}
