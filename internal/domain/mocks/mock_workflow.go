// Package mocks provides testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ocdsmap.dev/pkg/ocdsmap/internal/domain"
)

// MockWorkflow is a mock type for the Workflow type.
type MockWorkflow struct {
	mock.Mock
}

type MockWorkflow_Expecter struct {
	mock *mock.Mock
}

func (_m *MockWorkflow) EXPECT() *MockWorkflow_Expecter {
	return &MockWorkflow_Expecter{mock: &_m.Mock}
}

// Run provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.RunArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

type MockWorkflow_Run_Call struct {
	*mock.Call
}

// Run is a helper method to define mock.On call.
func (_e *MockWorkflow_Expecter) Run(ctx interface{}, args interface{}) *MockWorkflow_Run_Call {
	return &MockWorkflow_Run_Call{Call: _e.mock.On("Run", ctx, args)}
}

func (_c *MockWorkflow_Run_Call) Return(_a0 error) *MockWorkflow_Run_Call {
	_c.Call.Return(_a0)
	return _c
}

// Validate provides a mock function with given fields: ctx, args.
func (_m *MockWorkflow) Validate(ctx context.Context, args domain.ValidateArgs) error {
	ret := _m.Called(ctx, args)

	if rf, ok := ret.Get(0).(func(context.Context, domain.ValidateArgs) error); ok {
		return rf(ctx, args)
	}

	return ret.Error(0)
}

type MockWorkflow_Validate_Call struct {
	*mock.Call
}

// Validate is a helper method to define mock.On call.
func (_e *MockWorkflow_Expecter) Validate(ctx interface{}, args interface{}) *MockWorkflow_Validate_Call {
	return &MockWorkflow_Validate_Call{Call: _e.mock.On("Validate", ctx, args)}
}

func (_c *MockWorkflow_Validate_Call) Return(_a0 error) *MockWorkflow_Validate_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewMockWorkflow creates a new instance of MockWorkflow. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mock := &MockWorkflow{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
