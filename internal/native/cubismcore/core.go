//go:build cubismcore

// Package cubismcore implements native.Core over the Live2D Cubism Core C
// library.
//
// The host owns the model memory: it loads the moc, sizes and aligns the
// model buffer and calls csmInitializeModelInPlace. This package only adopts
// the resulting csmModel pointer and never frees it.
//
// Build with:
//
//	CGO_CFLAGS="-I<cubism>/Core/include" CGO_LDFLAGS="-L<cubism>/Core/lib/<platform>" \
//	    go build -tags cubismcore ./...
package cubismcore

/*
#cgo LDFLAGS: -lLive2DCubismCore
#include "Live2DCubismCore.h"
*/
import "C"

import (
	"errors"
	"unsafe"

	"github.com/roach88/mocsync/internal/native"
)

// ErrNilModel is returned when Wrap is given a nil pointer.
var ErrNilModel = errors.New("cubismcore: nil model pointer")

// Model is a native.Core backed by a csmModel.
type Model struct {
	ptr *C.csmModel
}

var _ native.Core = (*Model)(nil)

// Wrap adopts an initialized csmModel pointer.
func Wrap(ptr unsafe.Pointer) (*Model, error) {
	if ptr == nil {
		return nil, ErrNilModel
	}
	return &Model{ptr: (*C.csmModel)(ptr)}, nil
}

// Version returns the linked core version as packed major/minor/patch.
func Version() uint32 {
	return uint32(C.csmGetVersion())
}

func (m *Model) ParameterCount() int { return int(C.csmGetParameterCount(m.ptr)) }
func (m *Model) PartCount() int      { return int(C.csmGetPartCount(m.ptr)) }
func (m *Model) DrawableCount() int  { return int(C.csmGetDrawableCount(m.ptr)) }

func (m *Model) ParameterIDs() []string {
	return goStrings(C.csmGetParameterIds(m.ptr), m.ParameterCount())
}

func (m *Model) PartIDs() []string {
	return goStrings(C.csmGetPartIds(m.ptr), m.PartCount())
}

func (m *Model) DrawableIDs() []string {
	return goStrings(C.csmGetDrawableIds(m.ptr), m.DrawableCount())
}

func (m *Model) ParameterValues() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetParameterValues(m.ptr)))
}

func (m *Model) ParameterMinimumValues() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetParameterMinimumValues(m.ptr)))
}

func (m *Model) ParameterMaximumValues() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetParameterMaximumValues(m.ptr)))
}

func (m *Model) ParameterDefaultValues() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetParameterDefaultValues(m.ptr)))
}

func (m *Model) PartOpacities() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetPartOpacities(m.ptr)))
}

func (m *Model) DrawableVertexCounts() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableVertexCounts(m.ptr)))
}

// DrawableVertexPositions returns the csmVector2** table. csmVector2 and
// model.Vec2 share a layout.
func (m *Model) DrawableVertexPositions() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableVertexPositions(m.ptr)))
}

func (m *Model) DrawableDynamicFlags() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableDynamicFlags(m.ptr)))
}

func (m *Model) DrawableOpacities() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableOpacities(m.ptr)))
}

func (m *Model) DrawableDrawOrders() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableDrawOrders(m.ptr)))
}

func (m *Model) DrawableRenderOrders() native.Address {
	return native.Address(unsafe.Pointer(C.csmGetDrawableRenderOrders(m.ptr)))
}

func (m *Model) ResetDrawableDynamicFlags() { C.csmResetDrawableDynamicFlags(m.ptr) }

func (m *Model) Update() { C.csmUpdateModel(m.ptr) }

// goStrings copies a C string table. IDs are copied once at bind time, so
// the allocation stays out of the frame loop.
func goStrings(table **C.char, n int) []string {
	if table == nil || n <= 0 {
		return nil
	}
	rows := unsafe.Slice(table, n)
	out := make([]string, n)
	for i, s := range rows {
		out[i] = C.GoString(s)
	}
	return out
}
