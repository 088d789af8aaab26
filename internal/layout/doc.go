// Package layout compiles CUE model layout descriptors.
//
// A layout describes the entities of one core model: parameters with their
// range, parts with their base opacity, and drawables with rest vertices and
// per-parameter vertex weights. The software core is built from a layout,
// and the same layout produces the managed entity collections that get bound
// against it.
//
// # Layout Format
//
//	model: Haru: {
//	    index_order: "reverse"
//	    parameters: [
//	        {id: "ParamAngleX", min: -30, max: 30, default: 0},
//	    ]
//	    parts: [
//	        {id: "PartFace", opacity: 1},
//	    ]
//	    drawables: [{
//	        id:           "ArtMeshFace"
//	        vertices:     [[0, 0], [1, 0], [0, 1]]
//	        weights:      ParamAngleX: [0.01, 0]
//	        opacity:      1
//	        draw_order:   500
//	        render_order: 0
//	    }]
//	}
//
// index_order controls how the core assigns native offsets relative to
// declaration order ("forward" or "reverse"); it lets tests exercise the
// binder's reordering.
package layout
