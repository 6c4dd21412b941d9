package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/middleware"
	"hotel-booking-engine/utils"
)

// respondError maps service errors onto the API error envelope.
func respondError(c *gin.Context, err error) {
	if ve, ok := apperror.AsValidation(err); ok {
		utils.JSONErrorCode(c, http.StatusBadRequest, "error.validation", "Invalid request", gin.H{"fields": ve.Fields()})
		return
	}
	if ce, ok := apperror.AsConflict(err); ok {
		utils.JSONErrorCode(c, http.StatusConflict, "error.conflict", ce.Error(), gin.H{"reason": ce.Reason, "cells": ce.Cells})
		return
	}
	if apperror.IsNotFound(err) {
		utils.JSONErrorCode(c, http.StatusNotFound, "error.notFound", "Resource not found", nil)
		return
	}

	log.Printf("❌ %s %s failed (requestID: %s): %v", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c), err)
	var te *apperror.TransientError
	if errors.As(err, &te) {
		utils.JSONErrorCode(c, http.StatusInternalServerError, "error.transient", "Operation failed, nothing was changed. Please retry.", nil)
		return
	}
	utils.JSONErrorCode(c, http.StatusInternalServerError, "error.internal", "Internal server error", nil)
}

// respondBindError reports payload problems with the same field map as
// service validation errors.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		utils.JSONErrorCode(c, http.StatusBadRequest, "error.invalidPayload", "Invalid request payload", gin.H{"reason": err.Error()})
		return
	}
	ve := apperror.NewValidationError()
	for _, fe := range verrs {
		ve.Add(fieldPath(fe), bindMessage(fe))
	}
	respondError(c, ve)
}

// fieldPath is the namespace of a field error without the payload type,
// e.g. roomBookings[0].date.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func bindMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "isodate":
		return fe.Field() + " must be a YYYY-MM-DD date"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONErrorCode(c, http.StatusBadRequest, "error.invalidId", "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
