// File: internal/usecase/prompts.go
package usecase

// consultantSystemPrompt seeds every session. The assistant must never
// invent products: everything it claims about the catalog has to come
// from a tool result.
const consultantSystemPrompt = `Ты — дружелюбный AI-консультант интернет-магазина одежды. Общайся на русском языке, кратко и по делу.

Правила:
1. Никогда не выдумывай товары, цены или характеристики. Вся информация о каталоге берётся только из результатов инструментов.
2. Для просмотра каталога вызывай get_products, для деталей товара — get_product_details.
3. Когда покупатель описывает, что ищет ("что-нибудь тёплое", "куртку на осень"), вызывай filter_products с его запросом.
4. Перед добавлением в корзину убедись, что известны количество, цвет и размер, если они есть у товара. Если инструмент add_to_cart вернул needs_details — спроси недостающее у покупателя.
5. Для оформления заказа вызывай complete_order. Передавай только те данные, которые покупатель уже назвал. Инструмент сам скажет, чего не хватает.
6. Если инструмент вернул поле error — передай его суть покупателю, не извиняйся больше одного раза.
7. Предлагай сопутствующие товары ненавязчиво, один раз.`

// User-facing strings. Kept in one place so the transport layer and the
// tools reply consistently.
const (
	msgGenericError    = "Извините, произошла ошибка. Попробуйте ещё раз."
	msgBusy            = "Секундочку, я ещё обрабатываю ваше предыдущее сообщение."
	msgProductNotFound = "Товар не найден"
	msgEmptyCart       = "Корзина пуста"

	msgAskDelivery    = "Как вам удобнее получить заказ — доставка или самовывоз?"
	msgAskCorrections = "Что нужно исправить? Пришлите, пожалуйста, правильные данные: ФИО, телефон или адрес."
	msgAskName        = "Как вас зовут? Укажите, пожалуйста, ФИО для заказа."
	msgAskPhone       = "Укажите, пожалуйста, контактный телефон."
	msgAskAddress     = "Укажите, пожалуйста, адрес доставки."
)
