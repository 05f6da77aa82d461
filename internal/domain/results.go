package domain

// UserPosts groups the records retrieved under one identity.
type UserPosts struct {
	// Handle is the identity the records were fetched for. For search
	// results regrouped by author it equals the author handle.
	Handle string
	Posts  []Record
}

// ResultSet is the aggregated outcome of one fetch. Per-identity queries
// fill Users (in the order identities were fetched); search queries fill
// Posts in upstream ranking order and set Flat.
type ResultSet struct {
	Users []UserPosts
	Posts []Record
	Flat  bool
}

// Total returns the number of records in the set.
func (rs *ResultSet) Total() int {
	if rs.Flat {
		return len(rs.Posts)
	}
	n := 0
	for _, up := range rs.Users {
		n += len(up.Posts)
	}
	return n
}

// Keyed returns the per-identity view of the set. Flat search results are
// regrouped under their author handles, preserving the order authors first
// appear; keyed results are returned as-is.
func (rs *ResultSet) Keyed() []UserPosts {
	if !rs.Flat {
		return rs.Users
	}
	index := make(map[string]int)
	var users []UserPosts
	for _, rec := range rs.Posts {
		i, ok := index[rec.Author.Handle]
		if !ok {
			i = len(users)
			index[rec.Author.Handle] = i
			users = append(users, UserPosts{Handle: rec.Author.Handle})
		}
		users[i].Posts = append(users[i].Posts, rec)
	}
	return users
}
