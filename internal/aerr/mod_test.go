package aerr

//
// mod_test.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"errors"
	"fmt"
	"testing"

	"gitlab.com/kabes/go-pgfairing/internal/assert"
)

func TestUniqueList(t *testing.T) {
	var ulist uniqueList

	ulist.append("a")
	ulist.append("b", "c")
	assert.Equal(t, []string(ulist), []string{"a", "b", "c"})

	// existing values are skipped
	ulist.append("a", "b", "d")
	assert.Equal(t, []string(ulist), []string{"a", "b", "c", "d"})
}

func TestAppErrorWrapf(t *testing.T) {
	err := errors.New("connection refused")

	aerr1 := Wrapf(err, "connect to %s failed", "localhost")
	assert.True(t, errors.Is(aerr1, err))
	assert.Equal(t, errors.Unwrap(aerr1), err)
	assert.True(t, aerr1.stack != nil)
	assert.Equal(t, aerr1.Error(), "connect to localhost failed (connection refused)")
	assert.Equal(t, GetUserMessage(aerr1), "")
	assert.Equal(t, GetUserMessageOr(aerr1, "--"), "--")

	aerr2 := aerr1.WithUserMsg("database %q not available", "app")
	assert.True(t, errors.Is(aerr2, err))
	assert.Equal(t, aerr2.String(), `database "app" not available`)
	assert.Equal(t, GetUserMessageOr(aerr2, "--"), `database "app" not available`)
	// aerr1 not modified
	assert.Equal(t, aerr1.userMsg, "")
}

func TestAppErrorMeta(t *testing.T) {
	aerr0 := NewSimple("pool error")
	aerr1 := aerr0.WithMeta("host", "localhost", "port", 5432)
	assert.Equal(t, len(aerr1.meta), 2)
	assert.Equal(t, aerr1.meta["host"], any("localhost"))
	assert.Equal(t, aerr1.meta["port"], any(5432))

	// non-string keys are converted to str
	aerr2 := aerr1.WithMeta("port", 5433, 1, "x")
	assert.Equal(t, len(aerr2.meta), 3)
	assert.Equal(t, aerr2.meta["port"], any(5433))
	assert.Equal(t, aerr2.meta["1"], any("x"))
	assert.Equal(t, len(aerr1.meta), 2)
}

func TestAppErrorTags(t *testing.T) {
	aerr1 := NewSimple("error1").WithTag(ConfigurationError)
	aerr2 := aerr1.WithTag(InternalError).WithTag(ConfigurationError)

	assert.Equal(t, aerr1.tags, []string{ConfigurationError})
	assert.Equal(t, aerr2.tags, []string{ConfigurationError, InternalError})
	assert.True(t, HasTag(aerr2, InternalError))
	assert.True(t, !HasTag(aerr2, UnavailableError))
}

func TestApplyFor(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	err := ApplyFor(ErrDatabase, cause, "connect failed")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasTag(err, InternalError))
	assert.Equal(t, GetUserMessage(err), "database error")
	assert.Equal(t, err.Error(), "connect failed (dial tcp: connection refused)")
	assert.True(t, len(err.stack) > 0)

	// sentinel stays untouched
	assert.Equal(t, ErrDatabase.err, nil)

	err = ApplyFor(ErrUnavailable, cause, "", "no pool")
	assert.Equal(t, GetUserMessage(err), "no pool")
}

func TestNestedErrors(t *testing.T) {
	inner := ApplyFor(ErrInvalidConf, errors.New("bad port"), "parse config failed")
	outer := fmt.Errorf("ignite: %w", Wrapf(inner, "start failed"))

	assert.True(t, HasTag(outer, ConfigurationError))
	flat := Flatten(outer)
	assert.Equal(t, len(flat), 2)
	// deepest first
	assert.Equal(t, flat[0].msg, "parse config failed")
	assert.Equal(t, flat[1].msg, "start failed")
}
