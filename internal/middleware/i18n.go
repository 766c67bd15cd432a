// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/utils"
)

func I18nMiddleware(translator *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := translator.DefaultLanguage()
		if header := c.GetHeader("Accept-Language"); header != "" {
			lang = translator.Resolve(header)
		}

		c.Set(utils.ContextKeyLang, lang)
		c.Set(utils.ContextKeyTranslator, translator)
		c.Next()
	}
}
