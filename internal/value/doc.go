// Package value provides the JSON data model shared by every other package.
//
// Trade payloads are schema-less trees. They are represented as a sealed
// variant (Null, String, Number, Bool, Array, Object) so traversal is an
// exhaustive type switch instead of reflection over map[string]any.
//
// Key design constraints:
//   - Null is a real value; a key holding Null is distinct from an absent key
//   - Numbers are exact decimals (shopspring/decimal), never float64
//   - Values handed across package boundaries are deep copies (Clone)
package value
