// internal/users/edges.go

package users

import "github.com/lib/pq"

// Contains reports whether id is in the edge set
func Contains(ids pq.Int64Array, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless already present
func Add(ids pq.Int64Array, id int64) pq.Int64Array {
	if Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Remove drops every occurrence of id
func Remove(ids pq.Int64Array, id int64) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
