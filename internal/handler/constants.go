package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteRegister is the registration route.
	RouteRegister = "/register"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RoutePost is the post detail route pattern.
	RoutePost = "/post/{id}"
	// RoutePostComments is the comment submission route pattern.
	RoutePostComments = "/post/{id}/comments"
	// RouteNewPost is the new post route.
	RouteNewPost = "/new-post"
	// RouteEditPost is the edit post route pattern.
	RouteEditPost = "/edit-post/{id}"
	// RouteDeletePost is the delete post route pattern.
	RouteDeletePost = "/delete/{id}"

	// RouteAbout is the about page route.
	RouteAbout = "/about"
	// RouteServices is the services page route.
	RouteServices = "/services"

	// RouteMenus is the public menu listing route.
	RouteMenus = "/menus"
	// RouteMenuSlug is the public menu detail route pattern.
	RouteMenuSlug = "/menu/{slug}"

	// RouteContact is the contact form route.
	RouteContact = "/contact"

	// Admin routes, mounted under /admin.
	RouteAdminMessages = "/messages"
	RouteAdminMenus    = "/menus"

	// redirect targets
	redirectHome     = "/"
	redirectLogin    = "/login"
	redirectContact  = "/contact"
	redirectMenus    = "/admin/menus"
	redirectMessages = "/admin/messages"
)

// Flash message types.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeWarning = "warning"
)
