//go:build wit_unchecked

package rt

const checked = false
