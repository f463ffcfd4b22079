// Package layout holds the geometry shared by the projection strategies.
//
// The WIT interface projection sizes its boxes from the complexity of the whole
// diagram: [Measure] scans the components once and [Adaptive] turns the two
// maxima into a [Params] value. The UML and dependency projections use fixed
// geometry, exposed as constants.
package layout

import (
	"github.com/matzehuels/witview/pkg/wit"
)

// =============================================================================
// Adaptive Parameters
// =============================================================================

// Params are the derived dimensions of the WIT interface projection.
type Params struct {
	ComplexityFactor float64
	DensityFactor    float64

	PackageWidth  float64
	PackageHeight float64

	InterfaceWidth  float64
	InterfaceHeight float64

	LeafWidth  float64
	LeafHeight float64

	HorizontalSpacing        float64
	InterfaceVerticalSpacing float64
	LeafVerticalSpacing      float64
}

// Fixed WIT projection geometry.
const (
	Margin              = 100.0
	PackageHeight       = 80.0
	LeafHeight          = 50.0
	LeafVerticalSpacing = 70.0
	PackageToInterfaces = 120.0
	InterfaceToLeaves   = 40.0
	InterfaceGroupGap   = 60.0
	LeafIndent          = 40.0
	ComponentGap        = 100.0
	ComponentsPerRow    = 4
)

// Adaptive derives the WIT projection dimensions from the largest function
// count of any interface and the largest interface count of any component.
func Adaptive(maxFunctions, maxInterfaces int) Params {
	c := min(float64(maxFunctions)/5, 2)
	d := min(float64(maxInterfaces)/3, 1.5)
	return Params{
		ComplexityFactor:         c,
		DensityFactor:            d,
		PackageWidth:             280 + d*40,
		PackageHeight:            PackageHeight,
		InterfaceWidth:           220 + c*20,
		InterfaceHeight:          100 + c*20,
		LeafWidth:                180 + c*15,
		LeafHeight:               LeafHeight,
		HorizontalSpacing:        400 + d*100,
		InterfaceVerticalSpacing: 140 + c*20,
		LeafVerticalSpacing:      LeafVerticalSpacing,
	}
}

// Measure computes the adaptive parameters for a set of components.
func Measure(comps []wit.Component) Params {
	return Adaptive(wit.MaxFunctions(comps), wit.MaxInterfaces(comps))
}

// =============================================================================
// UML Geometry
// =============================================================================

// Fixed UML projection geometry.
const (
	UMLComponentX         = 400.0
	UMLComponentWidth     = 200.0
	UMLComponentHeight    = 120.0
	UMLInterfaceWidth     = 180.0
	UMLInterfaceSpacing   = 120.0
	UMLInterfaceMinHeight = 80.0
	UMLFunctionHeight     = 20.0
	UMLSideGap            = 100.0
	UMLMinComponentOffset = 200.0
	UMLComponentPadding   = 100.0
)

// UMLInterfaceHeight returns the box height for an interface with n functions.
func UMLInterfaceHeight(n int) float64 {
	return UMLInterfaceMinHeight + float64(n)*UMLFunctionHeight
}

// UMLComponentOffset returns the vertical distance from one component row to
// the next.
func UMLComponentOffset(imports, exports int) float64 {
	return max(UMLMinComponentOffset, float64(max(imports, exports))*UMLInterfaceSpacing+UMLComponentPadding)
}

// =============================================================================
// Dependency Geometry
// =============================================================================

// Fixed dependency projection geometry.
const (
	DepExporterX       = 100.0
	DepInterfaceX      = 400.0
	DepImporterX       = 700.0
	DepRowSpacing      = 100.0
	DepGroupPadding    = 150.0
	DepComponentWidth  = 180.0
	DepComponentHeight = 60.0
	DepInterfaceWidth  = 200.0
	DepInterfaceHeight = 80.0
)

// DependencyGroupOffset returns the vertical distance from one interface
// group to the next.
func DependencyGroupOffset(exporters, importers int) float64 {
	return float64(max(exporters, importers))*DepRowSpacing + DepGroupPadding
}
