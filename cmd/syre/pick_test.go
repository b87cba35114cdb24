package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockFinder is a testify/mock stand-in for activeFinder, adapted from
// the teacher's mocks.MockFuzzyFinder (same Find signature, same
// mock.Mock-based call recording).
type mockFinder struct {
	mock.Mock
}

func (f *mockFinder) Find(slice interface{}, itemFunc func(i int) string, opts ...interface{}) (int, error) {
	args := f.Called(slice, itemFunc, opts)
	return args.Int(0), args.Error(1)
}

func withFinder(t *testing.T, f finder) {
	t.Helper()
	prev := activeFinder
	activeFinder = f
	t.Cleanup(func() { activeFinder = prev })
}

func TestChooseReturnsSelectedItem(t *testing.T) {
	m := &mockFinder{}
	m.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)
	withFinder(t, m)

	choice, err := choose([]string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, "b", choice)
	m.AssertExpectations(t)
}

func TestChooseEmptyItemsErrorsWithoutInvokingFinder(t *testing.T) {
	m := &mockFinder{}
	withFinder(t, m)

	_, err := choose(nil)
	require.Error(t, err)
	m.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestChoosePropagatesFinderError(t *testing.T) {
	abort := errors.New("fuzzyfinder aborted")
	m := &mockFinder{}
	m.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(-1, abort)
	withFinder(t, m)

	_, err := choose([]string{"a"})
	require.ErrorIs(t, err, abort)
}
