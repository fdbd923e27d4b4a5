// Package mocks provides testify mocks of the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocdsmap.dev/pkg/ocdsmap/internal/controller"
	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// MockUI is a mock type for the UI type.
type MockUI struct {
	mock.Mock
}

type MockUI_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUI) EXPECT() *MockUI_Expecter {
	return &MockUI_Expecter{mock: &_m.Mock}
}

// Start provides a mock function with given fields: ctx, options.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := []interface{}{ctx}
	for _, o := range options {
		args = append(args, o)
	}

	ret := _m.Called(args...)

	if rf, ok := ret.Get(0).(func(context.Context, ...controller.StartOption) error); ok {
		return rf(ctx, options...)
	}

	return ret.Error(0)
}

type MockUI_Start_Call struct {
	*mock.Call
}

// Start is a helper method to define mock.On call.
func (_e *MockUI_Expecter) Start(ctx interface{}, options ...interface{}) *MockUI_Start_Call {
	return &MockUI_Start_Call{Call: _e.mock.On("Start", append([]interface{}{ctx}, options...)...)}
}

func (_c *MockUI_Start_Call) Return(_a0 error) *MockUI_Start_Call {
	_c.Call.Return(_a0)
	return _c
}

// Close provides a mock function with given fields: ctx.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

type MockUI_Close_Call struct {
	*mock.Call
}

// Close is a helper method to define mock.On call.
func (_e *MockUI_Expecter) Close(ctx interface{}) *MockUI_Close_Call {
	return &MockUI_Close_Call{Call: _e.mock.On("Close", ctx)}
}

func (_c *MockUI_Close_Call) Return() *MockUI_Close_Call {
	_c.Call.Return()
	return _c
}

// Wait provides a mock function with given fields: ctx.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

type MockUI_Wait_Call struct {
	*mock.Call
}

// Wait is a helper method to define mock.On call.
func (_e *MockUI_Expecter) Wait(ctx interface{}) *MockUI_Wait_Call {
	return &MockUI_Wait_Call{Call: _e.mock.On("Wait", ctx)}
}

func (_c *MockUI_Wait_Call) Return() *MockUI_Wait_Call {
	_c.Call.Return()
	return _c
}

// DisplayRunInfo provides a mock function with given fields: ctx, info.
func (_m *MockUI) DisplayRunInfo(ctx context.Context, info controller.RunInfo) {
	_m.Called(ctx, info)
}

type MockUI_DisplayRunInfo_Call struct {
	*mock.Call
}

// DisplayRunInfo is a helper method to define mock.On call.
func (_e *MockUI_Expecter) DisplayRunInfo(ctx interface{}, info interface{}) *MockUI_DisplayRunInfo_Call {
	return &MockUI_DisplayRunInfo_Call{Call: _e.mock.On("DisplayRunInfo", ctx, info)}
}

func (_c *MockUI_DisplayRunInfo_Call) Return() *MockUI_DisplayRunInfo_Call {
	_c.Call.Return()
	return _c
}

// DisplayRelease provides a mock function with given fields: ctx, release.
func (_m *MockUI) DisplayRelease(ctx context.Context, release m.Release) {
	_m.Called(ctx, release)
}

type MockUI_DisplayRelease_Call struct {
	*mock.Call
}

// DisplayRelease is a helper method to define mock.On call.
func (_e *MockUI_Expecter) DisplayRelease(ctx interface{}, release interface{}) *MockUI_DisplayRelease_Call {
	return &MockUI_DisplayRelease_Call{Call: _e.mock.On("DisplayRelease", ctx, release)}
}

func (_c *MockUI_DisplayRelease_Call) Run(run func(ctx context.Context, release m.Release)) *MockUI_DisplayRelease_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.Release))
	})

	return _c
}

func (_c *MockUI_DisplayRelease_Call) Return() *MockUI_DisplayRelease_Call {
	_c.Call.Return()
	return _c
}

// DisplaySummary provides a mock function with given fields: ctx, summary.
func (_m *MockUI) DisplaySummary(ctx context.Context, summary m.RunSummary) error {
	ret := _m.Called(ctx, summary)

	return ret.Error(0)
}

type MockUI_DisplaySummary_Call struct {
	*mock.Call
}

// DisplaySummary is a helper method to define mock.On call.
func (_e *MockUI_Expecter) DisplaySummary(ctx interface{}, summary interface{}) *MockUI_DisplaySummary_Call {
	return &MockUI_DisplaySummary_Call{Call: _e.mock.On("DisplaySummary", ctx, summary)}
}

func (_c *MockUI_DisplaySummary_Call) Run(run func(ctx context.Context, summary m.RunSummary)) *MockUI_DisplaySummary_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.RunSummary))
	})

	return _c
}

func (_c *MockUI_DisplaySummary_Call) Return(_a0 error) *MockUI_DisplaySummary_Call {
	_c.Call.Return(_a0)
	return _c
}

// DisplayValidation provides a mock function with given fields: ctx, report.
func (_m *MockUI) DisplayValidation(ctx context.Context, report m.ValidationReport) error {
	ret := _m.Called(ctx, report)

	return ret.Error(0)
}

type MockUI_DisplayValidation_Call struct {
	*mock.Call
}

// DisplayValidation is a helper method to define mock.On call.
func (_e *MockUI_Expecter) DisplayValidation(ctx interface{}, report interface{}) *MockUI_DisplayValidation_Call {
	return &MockUI_DisplayValidation_Call{Call: _e.mock.On("DisplayValidation", ctx, report)}
}

func (_c *MockUI_DisplayValidation_Call) Run(run func(ctx context.Context, report m.ValidationReport)) *MockUI_DisplayValidation_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(m.ValidationReport))
	})

	return _c
}

func (_c *MockUI_DisplayValidation_Call) Return(_a0 error) *MockUI_DisplayValidation_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewMockUI creates a new instance of MockUI. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mock := &MockUI{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
