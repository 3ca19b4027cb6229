// Package mocks provides testify mocks of the transport interfaces.
package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// MockFrameReadWriter is a mock type for the transport.FrameReadWriter type.
type MockFrameReadWriter struct {
	mock.Mock
}

type MockFrameReadWriter_Expecter struct {
	mock *mock.Mock
}

func (_m *MockFrameReadWriter) EXPECT() *MockFrameReadWriter_Expecter {
	return &MockFrameReadWriter_Expecter{mock: &_m.Mock}
}

// ReadFrameInto provides a mock function with given fields: buf
func (_m *MockFrameReadWriter) ReadFrameInto(buf []byte) ([]byte, error) {
	ret := _m.Called(buf)

	if len(ret) == 0 {
		panic("no return value specified for ReadFrameInto")
	}

	var r0 []byte
	var r1 error
	if rf, ok := ret.Get(0).(func([]byte) ([]byte, error)); ok {
		return rf(buf)
	}
	if rf, ok := ret.Get(0).(func([]byte) []byte); ok {
		r0 = rf(buf)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	if rf, ok := ret.Get(1).(func([]byte) error); ok {
		r1 = rf(buf)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockFrameReadWriter_ReadFrameInto_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'ReadFrameInto'
type MockFrameReadWriter_ReadFrameInto_Call struct {
	*mock.Call
}

// ReadFrameInto is a helper method to define mock.On call
//   - buf []byte
func (_e *MockFrameReadWriter_Expecter) ReadFrameInto(buf interface{}) *MockFrameReadWriter_ReadFrameInto_Call {
	return &MockFrameReadWriter_ReadFrameInto_Call{Call: _e.mock.On("ReadFrameInto", buf)}
}

func (_c *MockFrameReadWriter_ReadFrameInto_Call) Run(run func(buf []byte)) *MockFrameReadWriter_ReadFrameInto_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].([]byte))
	})
	return _c
}

func (_c *MockFrameReadWriter_ReadFrameInto_Call) Return(_a0 []byte, _a1 error) *MockFrameReadWriter_ReadFrameInto_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockFrameReadWriter_ReadFrameInto_Call) RunAndReturn(run func([]byte) ([]byte, error)) *MockFrameReadWriter_ReadFrameInto_Call {
	_c.Call.Return(run)
	return _c
}

// WriteFrame provides a mock function with given fields: data
func (_m *MockFrameReadWriter) WriteFrame(data []byte) error {
	ret := _m.Called(data)

	if len(ret) == 0 {
		panic("no return value specified for WriteFrame")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func([]byte) error); ok {
		r0 = rf(data)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockFrameReadWriter_WriteFrame_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'WriteFrame'
type MockFrameReadWriter_WriteFrame_Call struct {
	*mock.Call
}

// WriteFrame is a helper method to define mock.On call
//   - data []byte
func (_e *MockFrameReadWriter_Expecter) WriteFrame(data interface{}) *MockFrameReadWriter_WriteFrame_Call {
	return &MockFrameReadWriter_WriteFrame_Call{Call: _e.mock.On("WriteFrame", data)}
}

func (_c *MockFrameReadWriter_WriteFrame_Call) Run(run func(data []byte)) *MockFrameReadWriter_WriteFrame_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].([]byte))
	})
	return _c
}

func (_c *MockFrameReadWriter_WriteFrame_Call) Return(_a0 error) *MockFrameReadWriter_WriteFrame_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockFrameReadWriter_WriteFrame_Call) RunAndReturn(run func([]byte) error) *MockFrameReadWriter_WriteFrame_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockFrameReadWriter creates a new instance of MockFrameReadWriter. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockFrameReadWriter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFrameReadWriter {
	mock := &MockFrameReadWriter{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
