package crudgen

// Target describes a built-in artifact: the template rendered, the output
// path pattern and the markers the generated code must contain.
type Target struct {
	Name        string
	Template    string
	Path        string
	Description string
	Markers     []string
}

// Built-in target names.
const (
	TargetDTO        = "dto"
	TargetService    = "service"
	TargetController = "controller"
	TargetSwagger    = "swagger"
	TargetOpenAPI    = "openapi"
)

// DefaultOpenAPIPath is where the openapi target writes its document.
const DefaultOpenAPIPath = "openapi/{{ entity.name.lower() }}.openapi.json"

// DefaultTargets returns the NestJS bundle in generation order.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:        TargetDTO,
			Template:    "nestjs/dto.ts",
			Path:        "dtos/{{ entity.name.lower() }}.dto.ts",
			Description: "Create, update and response DTOs",
			Markers:     []string{"@ApiProperty", "export class"},
		},
		{
			Name:        TargetService,
			Template:    "nestjs/service.ts",
			Path:        "services/{{ entity.name.lower() }}.service.ts",
			Description: "Prisma backed CRUD service",
			Markers:     []string{"@Injectable", "constructor", "async"},
		},
		{
			Name:        TargetController,
			Template:    "nestjs/controller.ts",
			Path:        "controllers/{{ entity.name.lower() }}.controller.ts",
			Description: "REST controller with Swagger decorators",
			Markers:     []string{"@Controller", "@Get", "@Post", "@ApiTags"},
		},
		{
			Name:        TargetSwagger,
			Template:    "nestjs/swagger.ts",
			Path:        "swagger/{{ entity.name.lower() }}.swagger.ts",
			Description: "Swagger schema descriptor",
			Markers:     []string{"SwaggerDocs", "schemas"},
		},
	}
}
