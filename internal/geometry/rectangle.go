// Package geometry implements the rectangle calculator arithmetic.
package geometry

// RectangleArea returns length times width.
func RectangleArea(length, width float64) float64 {
	return length * width
}

// RectanglePerimeter returns twice the sum of length and width.
func RectanglePerimeter(length, width float64) float64 {
	return 2 * (length + width)
}
