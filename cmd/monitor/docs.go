package main

//go:generate swag init -g cmd/monitor/main.go -o docs

// @title           Sigtrack API
// @version         0.1.0
// @description     Trading-signal recording, outcome evaluation, and reporting.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
