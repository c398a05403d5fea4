// utils/response.go - JSON response helpers for Fiber handlers
package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Error sends a JSON error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// Success sends a 200 JSON response with data merged next to "success"
func Success(c *fiber.Ctx, data fiber.Map) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a 201 JSON response
func Created(c *fiber.Ctx, data fiber.Map) error {
	return Respond(c, fiber.StatusCreated, data)
}

func Respond(c *fiber.Ctx, status int, data fiber.Map) error {
	response := fiber.Map{
		"success": true,
	}
	for k, v := range data {
		response[k] = v
	}
	return c.Status(status).JSON(response)
}

// ParseID reads a positive numeric route parameter
func ParseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := ParseUint(c, param)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+param)
	}
	return id, nil
}

// ParseUint reads a numeric route parameter, zero included
func ParseUint(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+param)
	}
	return uint(id), nil
}

// QueryInt reads an integer query parameter, falling back to def when it is
// missing or malformed
func QueryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
