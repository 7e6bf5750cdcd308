// Package pixels is the pixel source for the hashing core.
//
// It turns encoded image bytes into small, fixed-size sample grids that the
// transform kernels consume. Decoding, noise-reduction blur, resizing and
// grayscale conversion all happen here so that the rest of the core only ever
// sees a Buffer of 8-bit samples with known dimensions.
//
// # Buffers
//
// A Buffer holds Width*Height*Channels samples in row-major order. Channels is
// 1 for grayscale requests and 3 (R, G, B) otherwise. Buffers are never
// mutated after Decode returns them.
//
// # Sources
//
// Source is the decode/resize capability. ImagingSource is the default
// implementation built on github.com/disintegration/imaging for resampling and
// grayscale, github.com/anthonynsimon/bild for Gaussian blur and
// github.com/lucasb-eyer/go-colorful for RGB extraction. Supported input
// formats are PNG, JPEG, GIF, WebP, BMP and TIFF.
//
// Output is deterministic: identical bytes and Request always produce an
// identical Buffer.
//
// # Thread Safety
//
// ImagingSource and ImageCache are safe for concurrent use.
//
// # Error Handling
//
// Empty input, undecodable input and non-positive request dimensions fail with
// an error wrapping ErrInvalidInput.
package pixels
