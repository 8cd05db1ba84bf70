package http

// ListWorkplacesRequest defines query parameters for listing workplaces.
type ListWorkplacesRequest struct {
	Branch string `form:"branch" binding:"required"`
}
