package util

var DuplicatedError = NewError("duplicated")
