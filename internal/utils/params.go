package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(name + " not found")
	}

	value, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(value), nil
}

func GetDayParam(ctx *gin.Context) (int, error) {
	raw := ctx.Param("day")

	day, err := strconv.Atoi(raw)

	if err != nil || day < 0 || day > 6 {
		return 0, errors.New("Invalid day of week")
	}

	return day, nil
}
