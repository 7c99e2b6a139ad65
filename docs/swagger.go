package docs

import "github.com/swaggo/swag"

// @title           Team Task Manager API
// @version         1.0
// @description     API for managing companies, teams, memberships with roles, and tasks with assignment and activity tracking

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration, login, and profile

// @tag.name Companies
// @tag.description Company management operations

// @tag.name Teams
// @tag.description Team and membership management operations

// @tag.name Tasks
// @tag.description Task lifecycle and assignment operations

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {},
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "description": "Registration, login, and profile",
            "name": "Users"
        },
        {
            "description": "Company management operations",
            "name": "Companies"
        },
        {
            "description": "Team and membership management operations",
            "name": "Teams"
        },
        {
            "description": "Task lifecycle and assignment operations",
            "name": "Tasks"
        }
    ]
}`

// swaggerInfo holds the Swagger spec generated from the annotations above.
var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Team Task Manager API",
	Description:      "API for managing companies, teams, memberships with roles, and tasks with assignment and activity tracking",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// Register swagger info
func SwaggerInfo() *swag.Spec {
	return swaggerInfo
}
