// Package hashing generates and compares visual-similarity fingerprints.
//
// A Hasher turns encoded image bytes into a HashDescriptor for one of the
// algorithms in Algorithms(). Each algorithm fixes the pixel grid it asks the
// pixels.Source for, the transform kernel it runs and the policy that turns
// coefficients into bits, so two descriptors produced with the same algorithm
// and size always have the same bit length.
//
// CompareHashes and CompareBits score two bit strings by Hamming distance:
//
//	similarity = 1 - differing / length
//
// and classify the result as low (> 0.8), medium (> 0.6) or high severity.
//
// # Errors
//
//   - ErrUnknownAlgorithm: the algorithm identifier is not recognised
//   - ErrInvalidInput: empty, undecodable or undersized image data, or a size
//     the algorithm cannot use
//   - ErrLengthMismatch: bit strings of different length were compared
//   - ErrAlgorithmMismatch: descriptors of different algorithms were compared
//
// All operations are pure and safe for concurrent use.
package hashing
