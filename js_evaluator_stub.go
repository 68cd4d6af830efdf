//go:build !js_eval

package component

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with the js_eval tag.
func JSEvaluatorAvailable() bool {
	return false
}
