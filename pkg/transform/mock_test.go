package transform_test

import (
	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/measured"
	"github.com/aretw0/lay/pkg/ports"
	"github.com/aretw0/lay/pkg/transform"
	"github.com/stretchr/testify/mock"
)

type op = domain.Operation[int, int]

type layer = ports.Layer[int, int, op, *measured.Bits, error, error]

type hooks = transform.Hooks[int, int, op, *measured.Bits, error, error]

// mockLayer records dispatch calls. Encoder and MakeBuffer are real.
type mockLayer struct {
	mock.Mock
	caps domain.Capabilities
}

func newMockLayer(caps domain.Capabilities) *mockLayer {
	return &mockLayer{caps: caps}
}

func (m *mockLayer) Send(ops []op) error {
	args := m.Called(ops)
	return args.Error(0)
}

func (m *mockLayer) Receive(buf *measured.Bits) error {
	args := m.Called(buf)
	return args.Error(0)
}

func (m *mockLayer) SendReceive(ops []op, buf *measured.Bits) error {
	args := m.Called(ops, buf)
	return args.Error(0)
}

func (m *mockLayer) MakeBuffer() *measured.Bits {
	return measured.NewBits(0)
}

func (m *mockLayer) Encoder() domain.Encoder[int, int, op] {
	return domain.Encode[int, int]()
}

func (m *mockLayer) Capabilities() domain.Capabilities {
	return m.caps
}
