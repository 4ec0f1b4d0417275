// Package merge implements the null-aware deep merge used for partial
// updates.
//
// Rules, applied key by key at every level:
//
//   - object patch over object existing: recurse
//   - array patch: replaces the existing value whole
//   - null patch over an object: the key is removed
//   - null patch over a scalar or absent key: the key is kept with null
//   - any other patch value: replaces or creates the key
//   - keys absent from the patch are left untouched
//
// Merge never mutates its inputs. The result shares no containers with
// either argument.
package merge

import "github.com/roach88/tcstore/internal/value"

// Merge returns existing with patch applied. When both are objects they are
// merged recursively; otherwise the patch replaces existing.
func Merge(existing, patch value.Value) value.Value {
	eo, eok := existing.(value.Object)
	po, pok := patch.(value.Object)
	if eok && pok {
		return Objects(eo, po)
	}
	return value.Clone(patch)
}

// Objects merges patch into existing and returns a new object.
func Objects(existing, patch value.Object) value.Object {
	result := existing.Clone()

	for key, pv := range patch {
		ev, exists := existing[key]

		switch p := pv.(type) {
		case value.Null:
			if _, isObj := ev.(value.Object); exists && isObj {
				delete(result, key)
			} else {
				result[key] = value.Null{}
			}
		case value.Object:
			if eo, isObj := ev.(value.Object); exists && isObj {
				result[key] = Objects(eo, p)
			} else {
				result[key] = p.Clone()
			}
		default:
			result[key] = value.Clone(pv)
		}
	}

	return result
}
