package contexthelpers

type contextKey string

const currentGameIDContextKey = contextKey("currentGameID")
