package handlers

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

type Viewer struct {
	Id    uint
	Admin bool
}

func GetViewer(c echo.Context) (Viewer, error) {
	session, err := store.Get(c.Request(), "session")
	if err != nil {
		return Viewer{}, fmt.Errorf("couldn't retrieve session from store")
	}
	val, ok := session.Values["user_id"]
	if !ok {
		return Viewer{}, fmt.Errorf("user_id not in session")
	}
	id, ok := val.(uint)
	if !ok {
		return Viewer{}, fmt.Errorf("user_id in session has unexpected type")
	}
	admin, _ := session.Values["is_admin"].(bool)
	return Viewer{Id: id, Admin: admin}, nil
}
