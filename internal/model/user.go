package model

// User is a registered account. The permission model proper is out of scope;
// the store only answers which workspaces a user may see.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}
