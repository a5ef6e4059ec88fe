// Package permissions decides who may read or write each kind of resource.
//
// A Policy answers twice per request: once for the collection (before any
// lookup happens) and once for the concrete object a handler has loaded.
// A nil user is an anonymous caller.
package permissions

import (
	"net/http"

	"ulasan/internal/apperrors"
	"ulasan/internal/models"
)

// Resource is anything with an owning user.
type Resource interface {
	OwnerID() uint
}

// Policy is a pair of predicates gating a request.
type Policy interface {
	HasPermission(user *models.User, method string) bool
	HasObjectPermission(user *models.User, method string, obj Resource) bool
}

// IsSafeMethod reports whether method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// OwnerOrAdmin lets admins manage every account and users act on their own.
type OwnerOrAdmin struct{}

func (OwnerOrAdmin) HasPermission(user *models.User, _ string) bool {
	return user != nil && user.IsAdmin()
}

func (OwnerOrAdmin) HasObjectPermission(user *models.User, _ string, obj Resource) bool {
	if user == nil {
		return false
	}
	return obj.OwnerID() == user.ID || user.IsAdmin()
}

// AdminOrReadOnly lets anyone read and only admins write.
type AdminOrReadOnly struct{}

func (AdminOrReadOnly) HasPermission(user *models.User, method string) bool {
	return IsSafeMethod(method) || (user != nil && user.IsAdmin())
}

func (p AdminOrReadOnly) HasObjectPermission(user *models.User, method string, _ Resource) bool {
	return p.HasPermission(user, method)
}

// AuthorOrStaffOrReadOnly lets anyone read, any user create, and only the
// author or staff change an existing object.
type AuthorOrStaffOrReadOnly struct{}

func (AuthorOrStaffOrReadOnly) HasPermission(user *models.User, method string) bool {
	return IsSafeMethod(method) || user != nil
}

func (AuthorOrStaffOrReadOnly) HasObjectPermission(user *models.User, method string, obj Resource) bool {
	if IsSafeMethod(method) {
		return true
	}
	if user == nil {
		return false
	}
	return obj.OwnerID() == user.ID || user.IsStaff()
}

// Authenticated admits any known user.
type Authenticated struct{}

func (Authenticated) HasPermission(user *models.User, _ string) bool { return user != nil }

func (Authenticated) HasObjectPermission(user *models.User, _ string, _ Resource) bool {
	return user != nil
}

// Check evaluates the collection-level predicate.
func Check(p Policy, user *models.User, method string) error {
	if p.HasPermission(user, method) {
		return nil
	}
	return deny(user)
}

// CheckObject evaluates the object-level predicate.
func CheckObject(p Policy, user *models.User, method string, obj Resource) error {
	if p.HasObjectPermission(user, method, obj) {
		return nil
	}
	return deny(user)
}

func deny(user *models.User) error {
	if user == nil {
		return apperrors.Unauthenticated("Authentication credentials were not provided.")
	}
	return apperrors.Forbidden("You do not have permission to perform this action.")
}
