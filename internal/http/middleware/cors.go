package middleware

import "github.com/valyala/fasthttp"

// CORS applies the open cross-origin policy used by the in-store web
// clients: every response allows any origin, and pre-flight requests
// are answered directly without reaching the router.
func CORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")

		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")
			ctx.SetStatusCode(fasthttp.StatusOK)
			return
		}

		next(ctx)
	}
}
