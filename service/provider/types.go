package provider

import (
	"github.com/elC0mpa/cost-doctor/model"
	"github.com/elC0mpa/cost-doctor/service"
)

// Backend is the set of services one billing provider offers
type Backend struct {
	Name         string
	Costs        service.CostQueryService
	Permissions  service.PermissionService
	Environments service.EnvironmentService
	closers      []func() error
}

type staticEnvironments struct {
	environments []model.Environment
}
