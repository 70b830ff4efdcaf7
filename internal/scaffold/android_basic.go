package scaffold

// androidBasic is the built-in single-activity Kotlin template.
func androidBasic() *Template {
	return &Template{
		Name:        "android-basic",
		Description: "Single-activity Kotlin application",
		Files: []File{
			{
				Path: "settings.gradle",
				Content: `pluginManagement {
    repositories {
        google()
        mavenCentral()
        gradlePluginPortal()
    }
}
dependencyResolutionManagement {
    repositoriesMode.set(RepositoriesMode.FAIL_ON_PROJECT_REPOS)
    repositories {
        google()
        mavenCentral()
    }
}
rootProject.name = "{{APP_NAME}}"
include ':app'
`,
			},
			{
				Path: "build.gradle",
				Content: `plugins {
    id 'com.android.application' version '8.2.2' apply false
    id 'org.jetbrains.kotlin.android' version '1.9.22' apply false
}
`,
			},
			{
				Path: "gradle.properties",
				Content: `org.gradle.jvmargs=-Xmx2048m -Dfile.encoding=UTF-8
android.useAndroidX=true
android.nonTransitiveRClass=true
kotlin.code.style=official
`,
			},
			{
				Path: "app/build.gradle",
				Content: `plugins {
    id 'com.android.application'
    id 'org.jetbrains.kotlin.android'
}

android {
    namespace '{{PACKAGE}}'
    compileSdk {{COMPILE_SDK}}

    defaultConfig {
        applicationId "{{PACKAGE}}"
        minSdk {{MIN_SDK}}
        targetSdk {{TARGET_SDK}}
        versionCode 1
        versionName "1.0"
    }

    buildTypes {
        release {
            minifyEnabled false
            proguardFiles getDefaultProguardFile('proguard-android-optimize.txt'), 'proguard-rules.pro'
        }
    }
    compileOptions {
        sourceCompatibility JavaVersion.VERSION_17
        targetCompatibility JavaVersion.VERSION_17
    }
    kotlinOptions {
        jvmTarget = '17'
    }
}

dependencies {
    implementation 'androidx.core:core-ktx:1.12.0'
    implementation 'androidx.appcompat:appcompat:1.6.1'
    implementation 'com.google.android.material:material:1.11.0'
    implementation 'androidx.constraintlayout:constraintlayout:2.1.4'
}
`,
			},
			{
				Path: "app/proguard-rules.pro",
				Content: `# Keep default rules.
`,
			},
			{
				Path: "app/src/main/AndroidManifest.xml",
				Content: `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android">

    <application
        android:allowBackup="true"
        android:label="{{APP_NAME}}"
        android:supportsRtl="true"
        android:theme="@style/Theme.AppCompat.Light">
        <activity
            android:name=".MainActivity"
            android:exported="true">
            <intent-filter>
                <action android:name="android.intent.action.MAIN" />
                <category android:name="android.intent.category.LAUNCHER" />
            </intent-filter>
        </activity>
    </application>

</manifest>
`,
			},
			{
				Path:    "app/src/main/java/{{PACKAGE_DIR}}/MainActivity.kt",
				Content: "{{MAIN_SOURCE}}",
			},
			{
				Path: "app/src/main/res/values/strings.xml",
				Content: `<?xml version="1.0" encoding="utf-8"?>
<resources>
    <string name="app_name">{{APP_NAME}}</string>
</resources>
`,
			},
			{
				Path: "app/src/main/res/layout/activity_main.xml",
				Content: `<?xml version="1.0" encoding="utf-8"?>
<androidx.constraintlayout.widget.ConstraintLayout
    xmlns:android="http://schemas.android.com/apk/res/android"
    xmlns:app="http://schemas.android.com/apk/res-auto"
    android:layout_width="match_parent"
    android:layout_height="match_parent">

    <TextView
        android:id="@+id/main_text"
        android:layout_width="wrap_content"
        android:layout_height="wrap_content"
        android:text="@string/app_name"
        app:layout_constraintBottom_toBottomOf="parent"
        app:layout_constraintEnd_toEndOf="parent"
        app:layout_constraintStart_toStartOf="parent"
        app:layout_constraintTop_toTopOf="parent" />

</androidx.constraintlayout.widget.ConstraintLayout>
`,
			},
		},
	}
}

// defaultMainSource is used when no generated activity source is supplied.
func defaultMainSource(pkg string) string {
	return `package ` + pkg + `

import android.os.Bundle
import androidx.appcompat.app.AppCompatActivity

class MainActivity : AppCompatActivity() {
    override fun onCreate(savedInstanceState: Bundle?) {
        super.onCreate(savedInstanceState)
        setContentView(R.layout.activity_main)
    }
}
`
}
