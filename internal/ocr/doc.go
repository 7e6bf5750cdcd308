// Package ocr provides a text-based semantic analyzer using Tesseract.
//
// When every hashing tier of a progressive comparison falls short, the
// comparison asks for semantic analysis. TextAnalyzer is a local answer to that
// request: it recognizes the text in both images with Tesseract (via
// gosseract/v2) and reports how much of it the images share.
//
// # Prerequisites
//
// Tesseract and the language data for the configured language must be
// installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Scoring
//
// Recognized text is normalized to a set of lowercase words. Punctuation and
// words shorter than two characters are dropped. The confidence is the
// Jaccard index of the two word sets: the number of shared words divided by
// the number of distinct words. Two images with no recognizable text score
// zero.
//
// # Preprocessing
//
// Images narrower than 640 pixels are upscaled, and both images are converted
// to grayscale before recognition.
package ocr
