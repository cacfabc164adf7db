// Package docs регистрирует описание API Accountable для swag и http-swagger.
package docs

import "github.com/swaggo/swag"

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
    "paths": {
        "/auth/signup": {"post": {"tags": ["Auth"], "summary": "Регистрация пользователя", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}},
        "/auth/signin": {"post": {"tags": ["Auth"], "summary": "Вход пользователя", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/signout": {"post": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Выход", "responses": {"200": {"description": "OK"}}}},
        "/auth/session": {"get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Текущая сессия", "responses": {"200": {"description": "OK"}}}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Profile"], "summary": "Профиль пользователя", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Profile"], "summary": "Изменение профиля", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Список задач", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Создание задачи", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/billing/subscribe": {"post": {"security": [{"BearerAuth": []}], "tags": ["Billing"], "summary": "Оформление тарифа", "responses": {"200": {"description": "OK"}}}},
        "/billing/topup": {"post": {"security": [{"BearerAuth": []}], "tags": ["Billing"], "summary": "Докупка звонков", "responses": {"200": {"description": "OK"}}}},
        "/pricing": {"get": {"tags": ["Pricing"], "summary": "Тарифы", "responses": {"200": {"description": "OK"}}}},
        "/blog": {"get": {"tags": ["Blog"], "summary": "Статьи блога", "responses": {"200": {"description": "OK"}}}},
        "/blog/{id}": {"get": {"tags": ["Blog"], "summary": "Статья блога", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/views/resolve": {"get": {"tags": ["Views"], "summary": "Разрешение адреса", "parameters": [{"type": "string", "name": "path", "in": "query"}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo содержит экспортируемую информацию Swagger, чтобы клиенты могли её изменить.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Accountable API",
	Description:      "API профилей, задач, имитированной оплаты и admin RPC Accountable",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
