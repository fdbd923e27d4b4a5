// Package mocks provides testify mocks of the adapter interfaces.
package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"ocdsmap.dev/pkg/ocdsmap/internal/adapter"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTemplateStore is a mock type for the TemplateStore type.
type MockTemplateStore struct {
	mock.Mock
}

// LoadTemplate provides a mock function with given fields: ctx, location.
func (_m *MockTemplateStore) LoadTemplate(ctx context.Context, location string) (*m.Template, error) {
	ret := _m.Called(ctx, location)

	tpl, _ := ret.Get(0).(*m.Template)

	return tpl, ret.Error(1)
}

// NewMockTemplateStore creates a new instance of MockTemplateStore and asserts its expectations on cleanup.
func NewMockTemplateStore(t testingT) *MockTemplateStore {
	mock := &MockTemplateStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockCodelistStore is a mock type for the CodelistStore type.
type MockCodelistStore struct {
	mock.Mock
}

// LoadCodelists provides a mock function with given fields: ctx, locations.
func (_m *MockCodelistStore) LoadCodelists(ctx context.Context, locations ...string) (m.Codelists, error) {
	args := []interface{}{ctx}
	for _, l := range locations {
		args = append(args, l)
	}

	ret := _m.Called(args...)

	lists, _ := ret.Get(0).(m.Codelists)

	return lists, ret.Error(1)
}

// NewMockCodelistStore creates a new instance of MockCodelistStore and asserts its expectations on cleanup.
func NewMockCodelistStore(t testingT) *MockCodelistStore {
	mock := &MockCodelistStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockSourceOpener is a mock type for the SourceOpener type.
type MockSourceOpener struct {
	mock.Mock
}

// OpenSource provides a mock function with given fields: driver, connection.
func (_m *MockSourceOpener) OpenSource(driver string, connection string) (adapter.RowSource, error) {
	ret := _m.Called(driver, connection)

	src, _ := ret.Get(0).(adapter.RowSource)

	return src, ret.Error(1)
}

// NewMockSourceOpener creates a new instance of MockSourceOpener and asserts its expectations on cleanup.
func NewMockSourceOpener(t testingT) *MockSourceOpener {
	mock := &MockSourceOpener{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockRowSource is a mock type for the RowSource type.
type MockRowSource struct {
	mock.Mock
}

// Rows provides a mock function with given fields: ctx, selector.
func (_m *MockRowSource) Rows(ctx context.Context, selector string) iter.Seq2[m.Row, error] {
	ret := _m.Called(ctx, selector)

	rows, _ := ret.Get(0).(iter.Seq2[m.Row, error])

	return rows
}

// Columns provides a mock function with given fields: ctx, selector.
func (_m *MockRowSource) Columns(ctx context.Context, selector string) ([]string, error) {
	ret := _m.Called(ctx, selector)

	columns, _ := ret.Get(0).([]string)

	return columns, ret.Error(1)
}

// Close provides a mock function with no fields.
func (_m *MockRowSource) Close() error {
	ret := _m.Called()

	return ret.Error(0)
}

// NewMockRowSource creates a new instance of MockRowSource and asserts its expectations on cleanup.
func NewMockRowSource(t testingT) *MockRowSource {
	mock := &MockRowSource{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockReleaseStore is a mock type for the ReleaseStore type.
type MockReleaseStore struct {
	mock.Mock
}

// Open provides a mock function with given fields: ctx, spec.
func (_m *MockReleaseStore) Open(ctx context.Context, spec adapter.OutputSpec) (adapter.ReleaseWriter, error) {
	ret := _m.Called(ctx, spec)

	w, _ := ret.Get(0).(adapter.ReleaseWriter)

	return w, ret.Error(1)
}

// NewMockReleaseStore creates a new instance of MockReleaseStore and asserts its expectations on cleanup.
func NewMockReleaseStore(t testingT) *MockReleaseStore {
	mock := &MockReleaseStore{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockReleaseWriter is a mock type for the ReleaseWriter type.
type MockReleaseWriter struct {
	mock.Mock
}

// Write provides a mock function with given fields: rel.
func (_m *MockReleaseWriter) Write(rel m.Release) error {
	ret := _m.Called(rel)

	return ret.Error(0)
}

// Close provides a mock function with given fields: ctx.
func (_m *MockReleaseWriter) Close(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)

	return ret.String(0), ret.Error(1)
}

// Discard provides a mock function with no fields.
func (_m *MockReleaseWriter) Discard() error {
	ret := _m.Called()

	return ret.Error(0)
}

// NewMockReleaseWriter creates a new instance of MockReleaseWriter and asserts its expectations on cleanup.
func NewMockReleaseWriter(t testingT) *MockReleaseWriter {
	mock := &MockReleaseWriter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
