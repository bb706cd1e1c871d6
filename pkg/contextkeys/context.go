package contextkeys

// Custom type avoids collisions with other context values.
type contextKey string

// DBContextKey stores the *gorm.DB handle in the request context.
const DBContextKey = contextKey("db")
