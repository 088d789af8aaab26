package native

// Core is the accessor surface of one native model instance.
//
// Address-returning methods correspond one-to-one to the csmGet* functions of
// the Cubism Core API. Element types:
//
//	ParameterValues, ParameterMinimumValues,
//	ParameterMaximumValues, ParameterDefaultValues  float32[ParameterCount]
//	PartOpacities                                   float32[PartCount]
//	DrawableVertexCounts                            int32[DrawableCount]
//	DrawableVertexPositions                         *Vec2[DrawableCount]
//	DrawableDynamicFlags                            uint8[DrawableCount]
//	DrawableOpacities                               float32[DrawableCount]
//	DrawableDrawOrders, DrawableRenderOrders        int32[DrawableCount]
//
// A Core must not be used by more than one goroutine at a time.
type Core interface {
	ParameterCount() int
	PartCount() int
	DrawableCount() int

	ParameterIDs() []string
	PartIDs() []string
	DrawableIDs() []string

	ParameterValues() Address
	ParameterMinimumValues() Address
	ParameterMaximumValues() Address
	ParameterDefaultValues() Address

	PartOpacities() Address

	DrawableVertexCounts() Address
	DrawableVertexPositions() Address
	DrawableDynamicFlags() Address
	DrawableOpacities() Address
	DrawableDrawOrders() Address
	DrawableRenderOrders() Address

	// ResetDrawableDynamicFlags clears the dynamic flags of every drawable.
	ResetDrawableDynamicFlags()

	// Update applies parameter and part values to the drawables.
	Update()
}
