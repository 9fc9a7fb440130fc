// Package models declares the model types the actstream command knows about.
package models

import (
	"time"

	"github.com/mesh-intelligence/actstream/pkg/apps"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

// AbstractUser holds the fields shared by user models. It is declared
// abstract and cannot be registered.
type AbstractUser struct {
	Username   string
	Email      string
	DateJoined time.Time
}

// User is an account that can act.
type User struct {
	ID int64 `gorm:"primaryKey"`
	AbstractUser
}

// Group is a named set of users.
type Group struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

// Site is a hosted site actions can target.
type Site struct {
	ID     int64 `gorm:"primaryKey"`
	Domain string
	Name   string
}

// DefaultInstalledApps is the installed_apps value written by init.
var DefaultInstalledApps = []string{"actstream", "auth", "sites"}

// DefaultActionable is the actstream.models value written by init.
var DefaultActionable = []string{"auth.user", "auth.group", "sites.site"}

// Declare declares the catalog into a.
func Declare(a *apps.Apps) error {
	if _, err := a.Declare("actstream", types.Action{}); err != nil {
		return err
	}
	if _, err := a.Declare("auth", apps.Abstract(AbstractUser{}), User{}, Group{}); err != nil {
		return err
	}
	if _, err := a.Declare("sites", Site{}); err != nil {
		return err
	}
	return nil
}
