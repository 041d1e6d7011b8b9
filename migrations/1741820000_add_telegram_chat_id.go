package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("profiles")
		if err != nil {
			return err
		}

		// Link a profile to its Telegram chat for bot notifications
		collection.Fields.Add(&core.NumberField{
			Id:      "prof_tg_chat",
			Name:    "telegram_chat_id",
			OnlyInt: true,
		})

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("profiles")
		if err != nil {
			return err
		}

		collection.Fields.RemoveById("prof_tg_chat")

		return app.Save(collection)
	})
}
